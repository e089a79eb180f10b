package server

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "faktur.v1.ExtractionService"

// ExtractionServer is the server side of faktur.v1.ExtractionService.
type ExtractionServer interface {
	ProcessText(context.Context, *ProcessTextRequest) (*ProcessTextResponse, error)
	SubmitFile(context.Context, *SubmitFileRequest) (*SubmitFileResponse, error)
	GetJob(context.Context, *GetJobRequest) (*GetJobResponse, error)
	SaveInvoices(context.Context, *SaveInvoicesRequest) (*SaveInvoicesResponse, error)
	ExportInvoices(context.Context, *ExportInvoicesRequest) (*ExportInvoicesResponse, error)
}

var _ ExtractionServer = (*ExtractionService)(nil)

// ExtractionServiceDesc describes the service for grpc.Server.RegisterService.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessText", Handler: unary(func(s ExtractionServer, ctx context.Context, in *ProcessTextRequest) (any, error) {
			return s.ProcessText(ctx, in)
		})},
		{MethodName: "SubmitFile", Handler: unary(func(s ExtractionServer, ctx context.Context, in *SubmitFileRequest) (any, error) {
			return s.SubmitFile(ctx, in)
		})},
		{MethodName: "GetJob", Handler: unary(func(s ExtractionServer, ctx context.Context, in *GetJobRequest) (any, error) {
			return s.GetJob(ctx, in)
		})},
		{MethodName: "SaveInvoices", Handler: unary(func(s ExtractionServer, ctx context.Context, in *SaveInvoicesRequest) (any, error) {
			return s.SaveInvoices(ctx, in)
		})},
		{MethodName: "ExportInvoices", Handler: unary(func(s ExtractionServer, ctx context.Context, in *ExportInvoicesRequest) (any, error) {
			return s.ExportInvoices(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "faktur/v1/extraction",
}

// RegisterExtractionServer registers srv on s.
func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

// unary adapts a typed call into a grpc method handler.
func unary[Req any](call func(ExtractionServer, context.Context, *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(ExtractionServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(ctx)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

func fullMethod(ctx context.Context) string {
	if m, ok := grpc.Method(ctx); ok {
		return m
	}
	return "/" + serviceName
}

// ExtractionClient calls faktur.v1.ExtractionService with the JSON codec.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) ProcessText(ctx context.Context, in *ProcessTextRequest, opts ...grpc.CallOption) (*ProcessTextResponse, error) {
	out := new(ProcessTextResponse)
	return out, c.invoke(ctx, "ProcessText", in, out, opts)
}

func (c *ExtractionClient) SubmitFile(ctx context.Context, in *SubmitFileRequest, opts ...grpc.CallOption) (*SubmitFileResponse, error) {
	out := new(SubmitFileResponse)
	return out, c.invoke(ctx, "SubmitFile", in, out, opts)
}

func (c *ExtractionClient) GetJob(ctx context.Context, in *GetJobRequest, opts ...grpc.CallOption) (*GetJobResponse, error) {
	out := new(GetJobResponse)
	return out, c.invoke(ctx, "GetJob", in, out, opts)
}

func (c *ExtractionClient) SaveInvoices(ctx context.Context, in *SaveInvoicesRequest, opts ...grpc.CallOption) (*SaveInvoicesResponse, error) {
	out := new(SaveInvoicesResponse)
	return out, c.invoke(ctx, "SaveInvoices", in, out, opts)
}

func (c *ExtractionClient) ExportInvoices(ctx context.Context, in *ExportInvoicesRequest, opts ...grpc.CallOption) (*ExportInvoicesResponse, error) {
	out := new(ExportInvoicesResponse)
	return out, c.invoke(ctx, "ExportInvoices", in, out, opts)
}

func (c *ExtractionClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}
