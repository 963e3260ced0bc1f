package wavmeta

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// ChunkHandler is a typed handler for RIFF/WAV metadata chunks.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte, listType [4]byte) bool
	Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

// NewChunkRegistry returns a registry handling fmt, wamd, guan, bext and
// LIST/INFO chunks. opts apply to the wamd decode.
func NewChunkRegistry(opts ...DecodeOption) *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&fmtChunkHandler{},
			&wamdChunkHandler{opts: opts},
			&guanoChunkHandler{},
			&bextChunkHandler{},
			&listChunkHandler{},
		},
	}
}

// Register appends a handler to the registry. Earlier handlers win.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(md *FileMetadata, c *Container, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	listType, err := sniffListType(chnk)
	if err != nil {
		return false, err
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID, listType) {
			err := handler.Decode(md, c, chnk)
			if err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

func sniffListType(chnk *riff.Chunk) ([4]byte, error) {
	var listType [4]byte

	if chnk == nil || chnk.ID != CIDList || chnk.Size < 4 {
		return listType, nil
	}

	var head [4]byte

	_, err := io.ReadFull(chnk.R, head[:])
	if err != nil {
		return listType, fmt.Errorf("failed to read LIST type: %w", err)
	}

	copy(listType[:], head[:])

	chnk.R = io.MultiReader(bytes.NewReader(head[:]), chnk.R)

	return listType, nil
}

type fmtChunkHandler struct{}

func (h *fmtChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == riff.FmtID
}

func (h *fmtChunkHandler) Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error {
	body, err := c.ReadBody(ch)
	if err != nil {
		return err
	}

	format, err := DecodeFmtChunk(body)
	if err != nil {
		return err
	}

	md.Format = format

	return nil
}

type wamdChunkHandler struct {
	opts []DecodeOption
}

func (h *wamdChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDWamd
}

func (h *wamdChunkHandler) Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error {
	body, err := c.ReadBody(ch)
	if err != nil {
		return err
	}

	wamd, err := DecodeWAMD(body, h.opts...)
	if err != nil {
		return err
	}

	md.Wamd = wamd

	return nil
}

type guanoChunkHandler struct{}

func (h *guanoChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDGuano
}

func (h *guanoChunkHandler) Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error {
	body, err := c.ReadBody(ch)
	if err != nil {
		return err
	}

	md.Guano = ParseGuano(body)

	return nil
}

type listChunkHandler struct{}

func (h *listChunkHandler) CanHandle(chunkID [4]byte, listType [4]byte) bool {
	return chunkID == CIDList && listType == CIDInfo
}

func (h *listChunkHandler) Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error {
	body, err := c.ReadBody(ch)
	if err != nil {
		return err
	}

	info, err := DecodeInfoList(body)
	if md.Info == nil {
		md.Info = info
	} else {
		for k, v := range info {
			md.Info[k] = v
		}
	}

	return err
}
