package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/svc"
	"stockchat-api/internal/types"
)

// timeLayout renders stored timestamps.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type ListChatsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListChatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListChatsLogic {
	return &ListChatsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListChatsLogic) ListChats() (resp *types.ChatsResponse, err error) {
	chats, err := l.svcCtx.Sessions.ListChats(l.ctx)
	if err != nil {
		return nil, err
	}
	resp = &types.ChatsResponse{Chats: make([]types.ChatSummary, 0, len(chats))}
	for _, c := range chats {
		resp.Chats = append(resp.Chats, types.ChatSummary{
			Id:        c.ID,
			Title:     c.Title,
			CreatedAt: formatTime(c.CreatedAt),
			UpdatedAt: formatTime(c.UpdatedAt),
		})
	}
	return resp, nil
}

type GetChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetChatLogic {
	return &GetChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetChatLogic) GetChat(req *types.ChatIdRequest) (resp *types.MessagesResponse, err error) {
	msgs, err := l.svcCtx.Sessions.History(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	resp = &types.MessagesResponse{Messages: make([]types.ChatMessage, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, types.ChatMessage{
			Id:             m.ID,
			Role:           m.Role,
			Content:        m.Content,
			CreatedAt:      formatTime(m.CreatedAt),
			Price:          m.Price,
			ChangePercent:  m.ChangePercent,
			MonthlyData:    m.MonthlyData,
			ComparisonData: m.ComparisonData,
		})
	}
	return resp, nil
}

type DeleteChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteChatLogic {
	return &DeleteChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeleteChatLogic) DeleteChat(req *types.ChatIdRequest) (resp *types.MessageResponse, err error) {
	if err := l.svcCtx.Sessions.DeleteChat(l.ctx, req.Id); err != nil {
		return nil, err
	}
	return &types.MessageResponse{Message: "Chat deleted successfully"}, nil
}

type UpdateChatTitleLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateChatTitleLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateChatTitleLogic {
	return &UpdateChatTitleLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UpdateChatTitleLogic) UpdateChatTitle(req *types.UpdateTitleRequest) (resp *types.MessageResponse, err error) {
	if err := l.svcCtx.Sessions.RenameChat(l.ctx, req.Id, req.Title); err != nil {
		return nil, err
	}
	return &types.MessageResponse{Message: "Chat title updated successfully"}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
