// Package contracts provides the core message types shared by the envelo
// codec, interceptors, and transports.
//
// The central type is Message: an opaque text body plus a set of named
// string attributes. The codec layer never interprets the body and never
// assumes a serialization format for it; everything the codec needs to
// know about a message travels in a single well-known attribute.
package contracts
