// Package rpc exposes the commission service over gRPC. Messages are
// google.protobuf.Struct values carrying the JSON form of the domain types.
package rpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"salesdesk/internal/commission"
	"salesdesk/internal/services/commissions/handler"
)

const ServiceName = "salesdesk.commissions.v1.CommissionService"

// CommissionService is implemented by handler.CommissionHandler on the server
// side and by Client on the gateway side.
type CommissionService interface {
	ListAssignments(ctx context.Context, month string) ([]commission.Assignment, error)
	ReplaceAssignments(ctx context.Context, month string, rows []commission.Assignment, uploadedBy string) (int, error)
	FetchPayments(ctx context.Context, start, end string) ([]commission.Payment, error)
	Calculate(ctx context.Context, req handler.CalculateRequest) (*commission.Report, error)
}

type listAssignmentsRequest struct {
	Month string `json:"month"`
}

type listAssignmentsResponse struct {
	Assignments []commission.Assignment `json:"assignments"`
}

type replaceAssignmentsRequest struct {
	Month       string                  `json:"month"`
	Assignments []commission.Assignment `json:"assignments"`
	UploadedBy  string                  `json:"uploaded_by,omitempty"`
}

type replaceAssignmentsResponse struct {
	Saved int `json:"saved"`
}

type fetchPaymentsRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type fetchPaymentsResponse struct {
	Payments []commission.Payment `json:"payments"`
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func fromStruct(s *structpb.Struct, v any) error {
	raw, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(CommissionService, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handle := func(ctx context.Context, req any) (any, error) {
				var r Req
				if err := fromStruct(req.(*structpb.Struct), &r); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "Malformed request: %v", err)
				}
				resp, err := call(srv.(CommissionService), ctx, r)
				if err != nil {
					return nil, err
				}
				out, err := toStruct(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, in, info, handle)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommissionService)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListAssignments", func(s CommissionService, ctx context.Context, r listAssignmentsRequest) (listAssignmentsResponse, error) {
			rows, err := s.ListAssignments(ctx, r.Month)
			return listAssignmentsResponse{Assignments: rows}, err
		}),
		unary("ReplaceAssignments", func(s CommissionService, ctx context.Context, r replaceAssignmentsRequest) (replaceAssignmentsResponse, error) {
			n, err := s.ReplaceAssignments(ctx, r.Month, r.Assignments, r.UploadedBy)
			return replaceAssignmentsResponse{Saved: n}, err
		}),
		unary("FetchPayments", func(s CommissionService, ctx context.Context, r fetchPaymentsRequest) (fetchPaymentsResponse, error) {
			payments, err := s.FetchPayments(ctx, r.Start, r.End)
			return fetchPaymentsResponse{Payments: payments}, err
		}),
		unary("Calculate", func(s CommissionService, ctx context.Context, r handler.CalculateRequest) (*commission.Report, error) {
			return s.Calculate(ctx, r)
		}),
	},
	Streams: []grpc.StreamDesc{},
}

func Register(s grpc.ServiceRegistrar, svc CommissionService) {
	s.RegisterService(&ServiceDesc, svc)
}
