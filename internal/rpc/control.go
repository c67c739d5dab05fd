package rpc

import (
	"context"
	"fmt"
	"math"

	"road-topology-go/internal/command"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName полное имя сервиса управления
const ServiceName = "roadtopology.v1.Control"

// ControlServer методы сервиса управления
type ControlServer interface {
	GetCommand(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetOverride(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	ReleaseOverride(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// Server реализация сервиса поверх ячейки команды
type Server struct {
	cell   *command.Cell
	logger *logrus.Logger
}

// NewServer создает сервис
func NewServer(cell *command.Cell, logger *logrus.Logger) *Server {
	return &Server{cell: cell, logger: logger}
}

// Register регистрирует сервис на gRPC сервере
func Register(s *grpc.Server, srv ControlServer) {
	s.RegisterService(&serviceDesc, srv)
}

// GetCommand возвращает текущую команду
func (s *Server) GetCommand(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	cmd := s.cell.Load()
	out, err := structpb.NewStruct(map[string]interface{}{
		"thrust":   float64(cmd.Thrust),
		"steering": float64(cmd.Steering),
		"blink":    float64(cmd.Blink),
		"manual":   s.cell.Manual(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// SetOverride включает ручную команду
func (s *Server) SetOverride(_ context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	cmd, err := CommandFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.cell.Override(cmd)
	s.logger.WithFields(logrus.Fields{
		"thrust":   cmd.Thrust,
		"steering": cmd.Steering,
		"blink":    cmd.Blink,
	}).Info("Включено ручное управление")
	return &emptypb.Empty{}, nil
}

// ReleaseOverride отключает ручное управление
func (s *Server) ReleaseOverride(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.cell.Release()
	s.logger.Info("Ручное управление отключено")
	return &emptypb.Empty{}, nil
}

// CommandFromStruct разбирает команду, отсутствующие поля считаются нулевыми
func CommandFromStruct(in *structpb.Struct) (command.Command, error) {
	var cmd command.Command
	fields := in.GetFields()

	for name, dst := range map[string]*int8{
		"thrust":   &cmd.Thrust,
		"steering": &cmd.Steering,
		"blink":    &cmd.Blink,
	} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return command.Command{}, fmt.Errorf("field %s must be a number", name)
		}
		if n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue < math.MinInt8 || n.NumberValue > math.MaxInt8 {
			return command.Command{}, fmt.Errorf("field %s out of int8 range: %v", name, n.NumberValue)
		}
		*dst = int8(n.NumberValue)
	}

	if cmd.Blink < -1 || cmd.Blink > 1 {
		return command.Command{}, fmt.Errorf("blink must be -1, 0 or 1, got %d", cmd.Blink)
	}
	return cmd, nil
}

func getCommandHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).GetCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetCommand"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).GetCommand(ctx, req.(*emptypb.Empty))
	})
}

func setOverrideHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).SetOverride(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/SetOverride"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).SetOverride(ctx, req.(*structpb.Struct))
	})
}

func releaseOverrideHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ReleaseOverride(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ReleaseOverride"}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).ReleaseOverride(ctx, req.(*emptypb.Empty))
	})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCommand", Handler: getCommandHandler},
		{MethodName: "SetOverride", Handler: setOverrideHandler},
		{MethodName: "ReleaseOverride", Handler: releaseOverrideHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "roadtopology/v1/control.proto",
}
