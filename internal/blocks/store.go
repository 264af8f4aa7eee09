package blocks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shopforge/shopforge/internal/errors"
)

// Block is a user-authored block instance. ID and Type are immutable after
// creation; Title and Config mutate through Update.
type Block struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Title  string `json:"title"`
	Config Config `json:"config"`
}

// blockJSON is the wire shape of a block; Config is decoded through the
// type's registered decoder.
type blockJSON struct {
	ID     string          `json:"id"`
	Type   Type            `json:"type"`
	Title  string          `json:"title"`
	Config json.RawMessage `json:"config"`
}

// UnmarshalJSON decodes a block, dispatching the config payload by type.
func (b *Block) UnmarshalJSON(data []byte) error {
	var wire blockJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	cfg, err := ParseConfig(wire.Type, wire.Config)
	if err != nil {
		return err
	}

	b.ID = wire.ID
	b.Type = wire.Type
	b.Title = wire.Title
	b.Config = cfg

	return nil
}

// Patch carries a partial update for a block. Nil fields are left as-is.
type Patch struct {
	Title  *string
	Config Config
}

// Store owns the authoritative content of each custom block, keyed by id.
// It is independent of ordering; the composition model holds position.
type Store struct {
	blocks map[string]*Block
}

// NewStore creates an empty block store.
func NewStore() *Store {
	return &Store{blocks: make(map[string]*Block)}
}

// Create validates the config for the type and, on success, stores and
// returns a new block with a freshly generated id. The caller is
// responsible for also inserting the id into the composition model.
func (s *Store) Create(t Type, title string, cfg Config) (*Block, error) {
	if !KnownType(t) {
		return nil, errors.NewValidationError(errors.CodeUnknownBlockType,
			fmt.Sprintf("unknown block type %q", t))
	}
	if cfg == nil {
		return nil, errors.InvalidBlockConfig(string(t), "config is required")
	}
	if cfg.BlockType() != t {
		return nil, errors.InvalidBlockConfig(string(t),
			fmt.Sprintf("config is for type %q", cfg.BlockType()))
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidBlockConfig(string(t), "title is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	block := &Block{
		ID:     uuid.NewString(),
		Type:   t,
		Title:  title,
		Config: cfg,
	}
	s.blocks[block.ID] = block

	return block, nil
}

// Update merges a patch into an existing block, re-validating the config
// for the unchanged type. The stored block is untouched on failure.
func (s *Store) Update(id string, patch Patch) (*Block, error) {
	block, ok := s.blocks[id]
	if !ok {
		return nil, errors.BlockNotFound(id)
	}

	updated := *block
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, errors.InvalidBlockConfig(string(block.Type), "title is required")
		}
		updated.Title = *patch.Title
	}
	if patch.Config != nil {
		if patch.Config.BlockType() != block.Type {
			return nil, errors.InvalidBlockConfig(string(block.Type),
				fmt.Sprintf("config is for type %q, block type is immutable", patch.Config.BlockType()))
		}
		if err := patch.Config.Validate(); err != nil {
			return nil, err
		}
		updated.Config = patch.Config
	}

	s.blocks[id] = &updated

	return &updated, nil
}

// Remove deletes a block if present. Removing an absent id is a no-op,
// mirroring the composition model's idempotent removal so the two stores
// never see caller-induced partial failures.
func (s *Store) Remove(id string) {
	delete(s.blocks, id)
}

// Get retrieves a block by id.
func (s *Store) Get(id string) (*Block, bool) {
	block, ok := s.blocks[id]
	return block, ok
}

// Len returns the number of stored blocks.
func (s *Store) Len() int {
	return len(s.blocks)
}

// IDs returns the stored block ids, sorted for deterministic output.
func (s *Store) IDs() []string {
	result := make([]string, 0, len(s.blocks))
	for id := range s.blocks {
		result = append(result, id)
	}
	sort.Strings(result)

	return result
}

// All returns the stored blocks sorted by id.
func (s *Store) All() []*Block {
	result := make([]*Block, 0, len(s.blocks))
	for _, id := range s.IDs() {
		result = append(result, s.blocks[id])
	}

	return result
}

// Restore inserts an existing block verbatim, keeping its id. Used when
// rehydrating a saved configuration; the block is validated first.
func (s *Store) Restore(block Block) error {
	if strings.TrimSpace(block.ID) == "" {
		return errors.InvalidBlockConfig(string(block.Type), "id is required")
	}
	if block.Config == nil {
		return errors.InvalidBlockConfig(string(block.Type), "config is required")
	}
	if err := block.Config.Validate(); err != nil {
		return err
	}
	if _, exists := s.blocks[block.ID]; exists {
		return errors.InvalidBlockConfig(string(block.Type),
			fmt.Sprintf("duplicate block id %q", block.ID))
	}

	stored := block
	s.blocks[block.ID] = &stored

	return nil
}

// Clone returns a deep-enough copy of the store. Config values are treated
// as immutable once stored: Update swaps the whole config pointer, so
// sharing them between clones is safe.
func (s *Store) Clone() *Store {
	clone := NewStore()
	for id, block := range s.blocks {
		copied := *block
		clone.blocks[id] = &copied
	}

	return clone
}
