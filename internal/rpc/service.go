package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophtodo.TodoService"

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Method names.
const (
	MethodRegister       = "Register"
	MethodLogin          = "Login"
	MethodRefreshToken   = "RefreshToken"
	MethodPing           = "Ping"
	MethodListTodos      = "ListTodos"
	MethodCreateTodo     = "CreateTodo"
	MethodGetTodo        = "GetTodo"
	MethodUpdateTodo     = "UpdateTodo"
	MethodDeleteTodo     = "DeleteTodo"
	MethodClearCompleted = "ClearCompleted"
	MethodSync           = "Sync"
	MethodExport         = "Export"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodRegister):     true,
	FullMethod(MethodLogin):        true,
	FullMethod(MethodRefreshToken): true,
	FullMethod(MethodPing):         true,
}

type TodoServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	ListTodos(context.Context, *ListTodosRequest) (*ListTodosResponse, error)
	CreateTodo(context.Context, *CreateTodoRequest) (*Task, error)
	GetTodo(context.Context, *GetTodoRequest) (*Task, error)
	UpdateTodo(context.Context, *UpdateTodoRequest) (*Task, error)
	DeleteTodo(context.Context, *DeleteTodoRequest) (*DeleteTodoResponse, error)
	ClearCompleted(context.Context, *ClearCompletedRequest) (*ClearCompletedResponse, error)
	Sync(context.Context, *SyncRequest) (*SyncResponse, error)
	Export(context.Context, *ExportRequest) (*ExportResponse, error)
}

func RegisterTodoServiceServer(s grpc.ServiceRegistrar, srv TodoServiceServer) {
	s.RegisterService(&TodoServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodDesc.
func unary[Req, Resp any](method string, call func(TodoServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TodoServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TodoServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var TodoServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TodoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, TodoServiceServer.Register),
		unary(MethodLogin, TodoServiceServer.Login),
		unary(MethodRefreshToken, TodoServiceServer.RefreshToken),
		unary(MethodPing, TodoServiceServer.Ping),
		unary(MethodListTodos, TodoServiceServer.ListTodos),
		unary(MethodCreateTodo, TodoServiceServer.CreateTodo),
		unary(MethodGetTodo, TodoServiceServer.GetTodo),
		unary(MethodUpdateTodo, TodoServiceServer.UpdateTodo),
		unary(MethodDeleteTodo, TodoServiceServer.DeleteTodo),
		unary(MethodClearCompleted, TodoServiceServer.ClearCompleted),
		unary(MethodSync, TodoServiceServer.Sync),
		unary(MethodExport, TodoServiceServer.Export),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophtodo",
}

type TodoServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	ListTodos(ctx context.Context, in *ListTodosRequest, opts ...grpc.CallOption) (*ListTodosResponse, error)
	CreateTodo(ctx context.Context, in *CreateTodoRequest, opts ...grpc.CallOption) (*Task, error)
	GetTodo(ctx context.Context, in *GetTodoRequest, opts ...grpc.CallOption) (*Task, error)
	UpdateTodo(ctx context.Context, in *UpdateTodoRequest, opts ...grpc.CallOption) (*Task, error)
	DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error)
	ClearCompleted(ctx context.Context, in *ClearCompletedRequest, opts ...grpc.CallOption) (*ClearCompletedResponse, error)
	Sync(ctx context.Context, in *SyncRequest, opts ...grpc.CallOption) (*SyncResponse, error)
	Export(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error)
}

type todoServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTodoServiceClient returns a client stub. Calls go out with the JSON
// codec regardless of the connection's defaults.
func NewTodoServiceClient(cc grpc.ClientConnInterface) TodoServiceClient {
	return &todoServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *todoServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *todoServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *todoServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *todoServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *todoServiceClient) ListTodos(ctx context.Context, in *ListTodosRequest, opts ...grpc.CallOption) (*ListTodosResponse, error) {
	return invoke[ListTodosResponse](ctx, c.cc, MethodListTodos, in, opts)
}

func (c *todoServiceClient) CreateTodo(ctx context.Context, in *CreateTodoRequest, opts ...grpc.CallOption) (*Task, error) {
	return invoke[Task](ctx, c.cc, MethodCreateTodo, in, opts)
}

func (c *todoServiceClient) GetTodo(ctx context.Context, in *GetTodoRequest, opts ...grpc.CallOption) (*Task, error) {
	return invoke[Task](ctx, c.cc, MethodGetTodo, in, opts)
}

func (c *todoServiceClient) UpdateTodo(ctx context.Context, in *UpdateTodoRequest, opts ...grpc.CallOption) (*Task, error) {
	return invoke[Task](ctx, c.cc, MethodUpdateTodo, in, opts)
}

func (c *todoServiceClient) DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*DeleteTodoResponse, error) {
	return invoke[DeleteTodoResponse](ctx, c.cc, MethodDeleteTodo, in, opts)
}

func (c *todoServiceClient) ClearCompleted(ctx context.Context, in *ClearCompletedRequest, opts ...grpc.CallOption) (*ClearCompletedResponse, error) {
	return invoke[ClearCompletedResponse](ctx, c.cc, MethodClearCompleted, in, opts)
}

func (c *todoServiceClient) Sync(ctx context.Context, in *SyncRequest, opts ...grpc.CallOption) (*SyncResponse, error) {
	return invoke[SyncResponse](ctx, c.cc, MethodSync, in, opts)
}

func (c *todoServiceClient) Export(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c.cc, MethodExport, in, opts)
}
