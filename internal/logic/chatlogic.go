package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/session"
	"stockchat-api/internal/svc"
	"stockchat-api/internal/types"
)

type ChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatLogic {
	return &ChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ChatLogic) Chat(req *types.ChatRequest) (resp *types.ChatResponse, err error) {
	res, err := l.svcCtx.Sessions.Turn(l.ctx, session.TurnRequest{
		Message:   req.Message,
		SessionID: req.SessionId,
	})
	if err != nil {
		l.Errorf("chat turn failed: %v", err)
		return nil, err
	}

	resp = &types.ChatResponse{SessionId: res.ChatID}
	if len(res.Replies) == 1 {
		resp.Response = res.Replies[0]
	} else {
		resp.Response = res.Replies
	}
	return resp, nil
}
