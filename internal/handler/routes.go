package handler

import (
	"context"
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"stockchat-api/internal/errorx"
	"stockchat-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	SetErrorHandler()
	server.AddRoutes(Routes(serverCtx))
}

// SetErrorHandler renders every handler error as {"detail": ...}.
func SetErrorHandler() {
	httpx.SetErrorHandlerCtx(func(_ context.Context, err error) (int, any) {
		return errorx.Handler(err)
	})
}

// Routes lists the API routes.
func Routes(serverCtx *svc.ServiceContext) []rest.Route {
	return []rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/",
			Handler: RootHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/chat",
			Handler: ChatHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/chats",
			Handler: ListChatsHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/chat/:id",
			Handler: GetChatHandler(serverCtx),
		},
		{
			Method:  http.MethodDelete,
			Path:    "/chat/:id",
			Handler: DeleteChatHandler(serverCtx),
		},
		{
			Method:  http.MethodPut,
			Path:    "/chat/:id/title",
			Handler: UpdateChatTitleHandler(serverCtx),
		},
	}
}
