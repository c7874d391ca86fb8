package pb

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName           = "centralsupply.CentralSupply"
	StockUpdateFullMethod = "/centralsupply.CentralSupply/StockUpdate"
)

type StockUpdateRequest struct {
	HospitalID            string  `json:"hospitalId"`
	ProductCode           string  `json:"productCode"`
	CurrentStockUnits     int32   `json:"currentStockUnits"`
	DailyConsumptionUnits int32   `json:"dailyConsumptionUnits"`
	DaysOfSupply          float64 `json:"daysOfSupply"`
	Timestamp             string  `json:"timestamp"`
}

type StockUpdateResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	OrderTriggered bool   `json:"orderTriggered"`
	OrderID        string `json:"orderId"`
}

type CentralSupplyClient interface {
	StockUpdate(ctx context.Context, in *StockUpdateRequest, opts ...grpc.CallOption) (*StockUpdateResponse, error)
}

type centralSupplyClient struct {
	cc grpc.ClientConnInterface
}

func NewCentralSupplyClient(cc grpc.ClientConnInterface) CentralSupplyClient {
	return &centralSupplyClient{cc: cc}
}

func (c *centralSupplyClient) StockUpdate(ctx context.Context, in *StockUpdateRequest, opts ...grpc.CallOption) (*StockUpdateResponse, error) {
	out := new(StockUpdateResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, StockUpdateFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CentralSupplyServer is implemented by in-process stand-ins for the
// authority, used in tests and local development.
type CentralSupplyServer interface {
	StockUpdate(ctx context.Context, in *StockUpdateRequest) (*StockUpdateResponse, error)
}

func RegisterCentralSupplyServer(s grpc.ServiceRegistrar, srv CentralSupplyServer) {
	s.RegisterService(&CentralSupply_ServiceDesc, srv)
}

func _CentralSupply_StockUpdate_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StockUpdateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CentralSupplyServer).StockUpdate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: StockUpdateFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CentralSupplyServer).StockUpdate(ctx, req.(*StockUpdateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var CentralSupply_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CentralSupplyServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StockUpdate",
			Handler:    _CentralSupply_StockUpdate_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stock_update.proto",
}
