package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps the service error taxonomy to a status. Store and internal
// failures are reported with msg only.
func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotConfigured):
		return status.Error(codes.Unimplemented, "export is not configured")
	default:
		return status.Error(codes.Internal, msg)
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	u, err := s.users.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, toStatus(err, "registration failed")
	}
	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &rpc.RegisterResponse{Message: "User registered successfully", User: wire.User(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err, "login failed")
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err, "token refresh failed")
	}
	return &rpc.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "ok"}, nil
}

func (s *GRPCServer) ListTodos(ctx context.Context, req *rpc.ListTodosRequest) (*rpc.ListTodosResponse, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, toStatus(err, "failed to fetch todos")
	}
	return &rpc.ListTodosResponse{Todos: wire.Tasks(list)}, nil
}

func (s *GRPCServer) CreateTodo(ctx context.Context, req *rpc.CreateTodoRequest) (*rpc.Task, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f, err := wire.CreateFields(req)
	if err != nil {
		return nil, toStatus(err, "failed to create todo")
	}
	t, err := s.tasks.Create(ctx, owner, f)
	if err != nil {
		return nil, toStatus(err, "failed to create todo")
	}
	out := wire.Task(t)
	return &out, nil
}

func (s *GRPCServer) GetTodo(ctx context.Context, req *rpc.GetTodoRequest) (*rpc.Task, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.Get(ctx, owner, req.ID)
	if err != nil {
		return nil, toStatus(err, "failed to fetch todo")
	}
	out := wire.Task(t)
	return &out, nil
}

func (s *GRPCServer) UpdateTodo(ctx context.Context, req *rpc.UpdateTodoRequest) (*rpc.Task, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	patch, err := wire.Patch(req)
	if err != nil {
		return nil, toStatus(err, "failed to update todo")
	}
	t, err := s.tasks.Update(ctx, owner, req.ID, patch)
	if err != nil {
		return nil, toStatus(err, "failed to update todo")
	}
	out := wire.Task(t)
	return &out, nil
}

func (s *GRPCServer) DeleteTodo(ctx context.Context, req *rpc.DeleteTodoRequest) (*rpc.DeleteTodoResponse, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, owner, req.ID); err != nil {
		return nil, toStatus(err, "failed to delete todo")
	}
	return &rpc.DeleteTodoResponse{Success: true}, nil
}

func (s *GRPCServer) ClearCompleted(ctx context.Context, req *rpc.ClearCompletedRequest) (*rpc.ClearCompletedResponse, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.tasks.ClearCompleted(ctx, owner)
	if err != nil {
		return nil, toStatus(err, "failed to clear completed todos")
	}
	return &rpc.ClearCompletedResponse{Success: true, DeletedCount: n}, nil
}

func (s *GRPCServer) Sync(ctx context.Context, req *rpc.SyncRequest) (*rpc.SyncResponse, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.sync.Reconcile(ctx, owner, wire.LastSync(req.LastSync), wire.ClientTasks(req.Todos))
	if err != nil {
		return nil, toStatus(err, "sync failed")
	}
	return &rpc.SyncResponse{Todos: wire.Tasks(list)}, nil
}

func (s *GRPCServer) Export(ctx context.Context, req *rpc.ExportRequest) (*rpc.ExportResponse, error) {
	owner, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.export.Export(ctx, owner)
	if err != nil {
		s.logger.Error(ctx, "export failed", "error", err)
		return nil, toStatus(err, "export failed")
	}
	return &rpc.ExportResponse{URL: url}, nil
}
