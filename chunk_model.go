package wavmeta

import "fmt"

// ChunkInfo describes a chunk met while scanning a file.
type ChunkInfo struct {
	ID [4]byte
	// Size is the declared body length, without the pad byte.
	Size uint32
	// Order is the 1-based position of the chunk in the file.
	Order int
	// BeforeData indicates if this chunk appeared before the data chunk.
	BeforeData bool
	// Handled is set when a registered handler decoded the chunk.
	Handled bool
}

func (c ChunkInfo) String() string {
	return fmt.Sprintf("%d %q %d bytes", c.Order, c.ID[:], c.Size)
}
