// Package serializer provides the payload codecs a client uses to encode
// request bodies and decode response bodies.
package serializer
