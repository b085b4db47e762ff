package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"stockchat-api/internal/svc"
	"stockchat-api/internal/types"
)

type RootLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRootLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RootLogic {
	return &RootLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RootLogic) Root() (resp *types.MessageResponse, err error) {
	return &types.MessageResponse{Message: "Welcome to the Stock Chat API"}, nil
}
