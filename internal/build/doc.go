// Package build derives manifest documents bottom-up from probed media and
// existing manifests.
//
// Video manifests come first: the media bytes are streamed once through the
// digest engine while being spooled for probing. Playlist manifests then
// reference the *serialized* video-manifest documents by digest, and the
// catalog references serialized playlist documents the same way. Because a
// reference is always the digest of a child's canonical bytes, children
// must be encoded and persisted before any parent can point at them; the
// batch drivers enforce that ordering.
//
// Per-file build failures are logged and skipped so one unreadable media
// object never aborts a batch.
package build
