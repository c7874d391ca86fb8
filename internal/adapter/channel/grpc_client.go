package channel

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hospital-e/supply-node/internal/adapter/channel/pb"
	"github.com/hospital-e/supply-node/internal/core/domain"
	"github.com/hospital-e/supply-node/internal/port"
)

// GRPCSyncChannel implements port.SyncChannel against the central authority's
// CentralSupply service. Each call gets its own deadline; error classification
// follows the caller's retry taxonomy: transport problems (retryable, TIMEOUT
// when time-based) vs explicit remote rejection.
type GRPCSyncChannel struct {
	client  pb.CentralSupplyClient
	timeout time.Duration
}

func NewGRPCSyncChannel(conn grpc.ClientConnInterface, timeout time.Duration) *GRPCSyncChannel {
	return &GRPCSyncChannel{
		client:  pb.NewCentralSupplyClient(conn),
		timeout: timeout,
	}
}

func (c *GRPCSyncChannel) SendStockUpdate(ctx context.Context, snap domain.StockSnapshot) (*port.StockUpdateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &pb.StockUpdateRequest{
		HospitalID:            snap.HospitalID,
		ProductCode:           snap.ProductCode,
		CurrentStockUnits:     int32(snap.CurrentStockUnits),
		DailyConsumptionUnits: int32(snap.DailyConsumptionUnits),
		DaysOfSupply:          snap.DaysOfSupply,
		Timestamp:             snap.AsOf.UTC().Format(time.RFC3339),
	}

	resp, err := c.client.StockUpdate(ctx, req)
	if err != nil {
		return nil, classifyRPCError(err)
	}

	if !resp.Success {
		return nil, &port.RemoteFault{Code: "REJECTED", Message: resp.Message}
	}

	return &port.StockUpdateResponse{
		Success:        resp.Success,
		Message:        resp.Message,
		OrderTriggered: resp.OrderTriggered,
		OrderID:        resp.OrderID,
	}, nil
}

func classifyRPCError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &port.TransportError{Op: "stock update", Err: err}
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return &port.TransportError{Op: "stock update", Timeout: true, Err: err}
	case codes.Unavailable, codes.Canceled, codes.Aborted:
		return &port.TransportError{Op: "stock update", Err: err}
	default:
		return &port.RemoteFault{Code: st.Code().String(), Message: st.Message()}
	}
}
