package scheduler

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/allocation"
)

const scheduleMethod = "/irrigation.Scheduler/Schedule"

// SchedulerServer is the server API of irrigation.Scheduler. Requests and
// results use the same JSON shape as the HTTP API, carried in a Struct.
type SchedulerServer interface {
	Schedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// GrpcHandler implements SchedulerServer on top of a Service.
type GrpcHandler struct {
	svc *Service
}

func NewGrpcHandler(svc *Service) *GrpcHandler {
	return &GrpcHandler{svc: svc}
}

func (h *GrpcHandler) Schedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	reqID := requestIDFrom(ctx)
	if err := grpc.SetHeader(ctx, metadata.Pairs("x-request-id", reqID)); err != nil {
		log.WithError(err).Debug("set response header")
	}

	raw, err := protojson.Marshal(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	res, err := h.svc.ScheduleFrom(ctx, Origin{Source: SourceGRPC, RequestID: reqID}, bytes.NewReader(raw))
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := toStruct(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

func requestIDFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

func toStatus(err error) error {
	code := codes.Internal
	if allocation.IsValidation(err) {
		code = codes.InvalidArgument
	}
	f := Failure(err)
	return status.Errorf(code, "%s (%s): %s", f.Error, f.Kind, f.Details)
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scheduleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).Schedule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: scheduleMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).Schedule(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SchedulerServiceDesc describes irrigation.Scheduler for grpc.Server.
var SchedulerServiceDesc = grpc.ServiceDesc{
	ServiceName: "irrigation.Scheduler",
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Schedule", Handler: scheduleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "irrigation/scheduler.proto",
}

func RegisterSchedulerServer(s grpc.ServiceRegistrar, srv SchedulerServer) {
	s.RegisterService(&SchedulerServiceDesc, srv)
}

// SchedulerClient calls irrigation.Scheduler.
type SchedulerClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulerClient(cc grpc.ClientConnInterface) *SchedulerClient {
	return &SchedulerClient{cc: cc}
}

func (c *SchedulerClient) Schedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, scheduleMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
