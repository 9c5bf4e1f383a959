package quark

// The well-known keys below are the closed set of pre-registered field
// names: .torrent metainfo keys and the RPC layer's request/response keys.
// They are package-level variables, not Go constants: each is assigned by
// Intern during package initialization, before any importing package runs,
// and never changes afterwards. Code that uses one of these variables gets
// its Quark without paying for a map lookup keyed by a fresh string.
var (
	KeyAnnounce     = Intern("announce")
	KeyAnnounceList = Intern("announce-list")
	KeyComment      = Intern("comment")
	KeyCreatedBy    = Intern("created by")
	KeyCreationDate = Intern("creation date")
	KeyEncoding     = Intern("encoding")
	KeyInfo         = Intern("info")

	KeyName        = Intern("name")
	KeyLength      = Intern("length")
	KeyPieceLength = Intern("piece length")
	KeyPieces      = Intern("pieces")
	KeyPrivate     = Intern("private")
	KeyFiles       = Intern("files")
	KeyPath        = Intern("path")
	KeyMd5sum      = Intern("md5sum")

	KeyMethod  = Intern("method")
	KeyParams  = Intern("params")
	KeyResult  = Intern("result")
	KeyError   = Intern("error")
	KeyKey     = Intern("key")
	KeyValue   = Intern("value")
	KeyFound   = Intern("found")
	KeyDeleted = Intern("deleted")
)
