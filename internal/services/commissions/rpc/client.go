package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"salesdesk/internal/commission"
	"salesdesk/internal/services/commissions/handler"
)

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to encode request: %v", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return err
	}
	if err := fromStruct(out, resp); err != nil {
		return status.Errorf(codes.Internal, "Failed to decode response: %v", err)
	}
	return nil
}

func (c *Client) ListAssignments(ctx context.Context, month string) ([]commission.Assignment, error) {
	var resp listAssignmentsResponse
	if err := c.invoke(ctx, "ListAssignments", listAssignmentsRequest{Month: month}, &resp); err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

func (c *Client) ReplaceAssignments(ctx context.Context, month string, rows []commission.Assignment, uploadedBy string) (int, error) {
	var resp replaceAssignmentsResponse
	req := replaceAssignmentsRequest{Month: month, Assignments: rows, UploadedBy: uploadedBy}
	if err := c.invoke(ctx, "ReplaceAssignments", req, &resp); err != nil {
		return 0, err
	}
	return resp.Saved, nil
}

func (c *Client) FetchPayments(ctx context.Context, start, end string) ([]commission.Payment, error) {
	var resp fetchPaymentsResponse
	if err := c.invoke(ctx, "FetchPayments", fetchPaymentsRequest{Start: start, End: end}, &resp); err != nil {
		return nil, err
	}
	return resp.Payments, nil
}

func (c *Client) Calculate(ctx context.Context, req handler.CalculateRequest) (*commission.Report, error) {
	var report commission.Report
	if err := c.invoke(ctx, "Calculate", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
