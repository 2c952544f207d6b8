package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.TodoServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(string)

	// serializes refreshes so a rotated token is used once
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	changed := s.refreshToken != refresh
	s.refreshToken = refresh
	fn := s.onRefresh
	s.mu.Unlock()

	if changed && fn != nil {
		fn(refresh)
	}
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if rpc.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	access, err2 := s.refresh(ctx, access)
	if err2 != nil {
		return err
	}

	// retry once with the new access token
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

// refresh obtains a new access token unless another call already replaced
// stale while this one waited.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return access, nil
	}
	if refresh == "" {
		return "", ErrUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return "", err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.AccessToken, nil
}

// NewGRPCClient dials endpointURL lazily. A positive timeout bounds every call.
func NewGRPCClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewTodoServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) OnRefreshToken(fn func(string)) {
	s.mu.Lock()
	s.onRefresh = fn
	s.mu.Unlock()
}

func (s *GRPCClient) Register(ctx context.Context, email, password, name string) error {
	req := &rpc.RegisterRequest{Email: email, Password: password, Name: name}

	if _, err := s.client.Register(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	req := &rpc.LoginRequest{Email: email, Password: password}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Resume(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if !strings.EqualFold(resp.Status, "ok") {
		return ErrUnavailable
	}
	return nil
}

func formatDue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func fromRPC(t *rpc.Task) models.Task {
	out := models.Task{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Priority:  common.Priority(t.Priority),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		out.DueDate = &d
	}
	return out
}

func fromRPCList(list []rpc.Task) []models.Task {
	out := make([]models.Task, 0, len(list))
	for i := range list {
		out = append(out, fromRPC(&list[i]))
	}
	return out
}

func (s *GRPCClient) ListTodos(ctx context.Context) ([]models.Task, error) {
	resp, err := s.client.ListTodos(ctx, &rpc.ListTodosRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return fromRPCList(resp.Todos), nil
}

func (s *GRPCClient) CreateTodo(ctx context.Context, t models.Task) (models.Task, error) {
	req := &rpc.CreateTodoRequest{Text: t.Text, DueDate: formatDue(t.DueDate), Priority: string(t.Priority)}

	resp, err := s.client.CreateTodo(ctx, req)
	if err != nil {
		return models.Task{}, s.mapError(err)
	}
	return fromRPC(resp), nil
}

func (s *GRPCClient) UpdateTodo(ctx context.Context, id string, e models.TaskEdit) (models.Task, error) {
	req := &rpc.UpdateTodoRequest{ID: id, Text: e.Text, Completed: e.Completed, DueDate: formatDue(e.DueDate)}
	if e.ClearDueDate {
		empty := ""
		req.DueDate = &empty
	}
	if e.Priority != nil {
		p := string(*e.Priority)
		req.Priority = &p
	}

	resp, err := s.client.UpdateTodo(ctx, req)
	if err != nil {
		return models.Task{}, s.mapError(err)
	}
	return fromRPC(resp), nil
}

func (s *GRPCClient) DeleteTodo(ctx context.Context, id string) error {
	if _, err := s.client.DeleteTodo(ctx, &rpc.DeleteTodoRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ClearCompleted(ctx context.Context) (int64, error) {
	resp, err := s.client.ClearCompleted(ctx, &rpc.ClearCompletedRequest{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.DeletedCount, nil
}

// Sync submits the whole local list. The server decides which tasks are
// candidates; the complete current list comes back.
func (s *GRPCClient) Sync(ctx context.Context, lastSync *time.Time, tasks []models.Task) ([]models.Task, error) {
	req := &rpc.SyncRequest{Todos: make([]rpc.SyncTask, 0, len(tasks))}
	if lastSync != nil {
		ms := lastSync.UnixMilli()
		req.LastSync = &ms
	}
	for _, t := range tasks {
		req.Todos = append(req.Todos, rpc.SyncTask{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			DueDate:   formatDue(t.DueDate),
			Priority:  string(t.Priority),
			UpdatedAt: t.UpdatedAt.UTC(),
		})
	}

	resp, err := s.client.Sync(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return fromRPCList(resp.Todos), nil
}

func (s *GRPCClient) Export(ctx context.Context) (string, error) {
	resp, err := s.client.Export(ctx, &rpc.ExportRequest{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) {
		return ErrUnauthorized
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrValidation, st.Message())
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.Unimplemented:
		return ErrNotConfigured
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
