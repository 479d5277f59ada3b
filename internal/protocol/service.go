package protocol

import (
	"context"

	"google.golang.org/grpc"
)

// MatchingServer is the service interface the hand-written ServiceDesc
// below dispatches to. It plays the role a protoc-gen-go-grpc-generated
// "XxxServer" interface would play, but is written by hand since this
// engine ships without a .proto file (see DESIGN.md).
type MatchingServer interface {
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Cancel(context.Context, *CancelRequest) (*CancelResponse, error)
	Replace(context.Context, *ReplaceRequest) (*ReplaceResponse, error)
	StreamTrades(*StreamTradesRequest, Matching_StreamTradesServer) error
}

// Matching_StreamTradesServer is the server-side handle for the
// StreamTrades server-streaming RPC.
type Matching_StreamTradesServer interface {
	Send(*TradeEvent) error
	grpc.ServerStream
}

type matchingStreamTradesServer struct {
	grpc.ServerStream
}

func (x *matchingStreamTradesServer) Send(m *TradeEvent) error {
	return x.ServerStream.SendMsg(m)
}

func matchingSubmitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SubmitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchingServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/aeromatch.matching.Matching/Submit"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchingServer).Submit(ctx, req.(*SubmitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func matchingCancelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchingServer).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/aeromatch.matching.Matching/Cancel"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchingServer).Cancel(ctx, req.(*CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func matchingReplaceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReplaceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchingServer).Replace(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/aeromatch.matching.Matching/Replace"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchingServer).Replace(ctx, req.(*ReplaceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func matchingStreamTradesHandler(srv any, stream grpc.ServerStream) error {
	m := new(StreamTradesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MatchingServer).StreamTrades(m, &matchingStreamTradesServer{stream})
}

// serviceDesc is the hand-written analogue of a protoc-gen-go-grpc
// _ServiceDesc, wiring method names to the handlers above. grpc.Server
// only ever needs this shape at registration time; nothing downstream
// cares whether it came from protoc or was written by hand.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "aeromatch.matching.Matching",
	HandlerType: (*MatchingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: matchingSubmitHandler},
		{MethodName: "Cancel", Handler: matchingCancelHandler},
		{MethodName: "Replace", Handler: matchingReplaceHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamTrades",
			Handler:       matchingStreamTradesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "matching.proto",
}

// RegisterMatchingServer registers srv against s under the Matching
// service name.
func RegisterMatchingServer(s *grpc.Server, srv MatchingServer) {
	s.RegisterService(&serviceDesc, srv)
}
