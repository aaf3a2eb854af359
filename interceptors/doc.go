// Package interceptors provides the send/receive interceptor chain the
// client runs around its transport.
//
// Interceptors transform or observe messages crossing the transport
// boundary without the transport knowing about it. Send interceptors run
// in registration order before transmission; receive interceptors run in
// reverse registration order after receipt, so a chain unwinds inbound
// what it applied outbound.
//
// Built-in interceptors:
//   - CodecInterceptor: applies the envelope codec (compression,
//     encoding, checksums, the metadata attribute) in both directions
//   - LoggingInterceptor: logs message sizes and attribute counts
//
// Custom interceptors implement SendInterceptor, ReceiveInterceptor, or
// both:
//
//	chain := interceptors.NewChain(logger).
//		Add(interceptors.NewLoggingInterceptor(logger)).
//		Add(interceptors.NewCodecInterceptor(engine, logger))
//
//	out, err := chain.ExecuteSend(ctx, msg)
package interceptors
