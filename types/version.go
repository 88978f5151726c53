package types

// Version is the canonical project version.
// All components (CLI, wire codec, adapters) share this version
// per the lockstep versioning policy.
const Version = "0.1.0"

// WireVersion is the frame codec contract version.
// Per lockstep versioning this must equal Version.
const WireVersion = Version
