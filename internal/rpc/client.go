package rpc

import (
	"context"

	"road-topology-go/internal/command"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client клиент сервиса управления
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient создает клиента поверх соединения
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// GetCommand запрашивает текущую команду
func (c *Client) GetCommand(ctx context.Context) (command.Command, bool, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/GetCommand", &emptypb.Empty{}, out); err != nil {
		return command.Command{}, false, err
	}

	cmd, err := CommandFromStruct(out)
	if err != nil {
		return command.Command{}, false, err
	}
	return cmd, out.GetFields()["manual"].GetBoolValue(), nil
}

// SetOverride включает ручную команду
func (c *Client) SetOverride(ctx context.Context, cmd command.Command) error {
	in, err := structpb.NewStruct(map[string]interface{}{
		"thrust":   float64(cmd.Thrust),
		"steering": float64(cmd.Steering),
		"blink":    float64(cmd.Blink),
	})
	if err != nil {
		return err
	}
	return c.conn.Invoke(ctx, "/"+ServiceName+"/SetOverride", in, new(emptypb.Empty))
}

// ReleaseOverride отключает ручное управление
func (c *Client) ReleaseOverride(ctx context.Context) error {
	return c.conn.Invoke(ctx, "/"+ServiceName+"/ReleaseOverride", &emptypb.Empty{}, new(emptypb.Empty))
}
