// Package grpc exposes the task services over gRPC using the JSON codec
// from package rpc.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the identity provider the transport needs.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type TaskService interface {
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Create(ctx context.Context, ownerID string, f models.TaskFields) (*models.Task, error)
	Get(ctx context.Context, ownerID, id string) (*models.Task, error)
	Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	ClearCompleted(ctx context.Context, ownerID string) (int64, error)
}

type SyncService interface {
	Reconcile(ctx context.Context, ownerID string, lastSync *time.Time, clientTasks []models.ClientTask) ([]models.Task, error)
}

type ExportService interface {
	Export(ctx context.Context, ownerID string) (string, error)
}

type GRPCServer struct {
	address string
	users   UserService
	tasks   TaskService
	sync    SyncService
	export  ExportService
	logger  logging.Logger
}

var _ rpc.TodoServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us UserService, ts TaskService, ss SyncService, es ExportService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		tasks:   ts,
		sync:    ss,
		export:  es,
	}
}

// NewServer builds the grpc.Server with the access token interceptor and
// the service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)
	rpc.RegisterTodoServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
