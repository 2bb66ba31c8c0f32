package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/lk2023060901/doc-summarizer/internal/summarizer/tokenizer"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

// RecursiveSplitter splits raw text into bounded, ordered chunks. Splitting
// is pure and deterministic: identical (text, config) always yields an
// identical chunk sequence, which is what makes chunk-level retries safe.
type RecursiveSplitter struct {
	cfg     types.SplitConfig
	counter tokenizer.Counter
}

// New creates a splitter. The counter is only used to fill in token
// estimates on the produced chunks; all size budgets are in characters.
func New(cfg types.SplitConfig, counter tokenizer.Counter) (*RecursiveSplitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RecursiveSplitter{
		cfg:     cfg.WithDefaults(),
		counter: counter,
	}, nil
}

// Split produces the ordered chunk sequence for text. Empty input yields
// an empty sequence; well-formed UTF-8 never fails.
func (s *RecursiveSplitter) Split(text string) []*types.Chunk {
	if text == "" {
		return []*types.Chunk{}
	}

	segments := s.splitText(text, s.cfg.Separators)
	return s.merge(segments)
}

// splitText recursively splits text on the separator ladder. Separators are
// kept as their own segments so that concatenating all segments reconstructs
// the input byte-for-byte. Segments still over budget after the last
// separator are hard-sliced at rune boundaries.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	if len(text) <= s.cfg.MaxChunkChars {
		return []string{text}
	}

	if len(separators) == 0 || separators[0] == "" {
		return s.hardSplit(text)
	}

	separator := separators[0]
	remaining := separators[1:]

	parts := strings.Split(text, separator)
	segments := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if part != "" {
			if len(part) > s.cfg.MaxChunkChars {
				segments = append(segments, s.splitText(part, remaining)...)
			} else {
				segments = append(segments, part)
			}
		}
		if i < len(parts)-1 {
			segments = append(segments, separator)
		}
	}

	return segments
}

// hardSplit slices text into pieces of at most MaxChunkChars without
// breaking UTF-8 sequences.
func (s *RecursiveSplitter) hardSplit(text string) []string {
	var pieces []string
	var sb strings.Builder
	for _, r := range text {
		if sb.Len() > 0 && sb.Len()+utf8.RuneLen(r) > s.cfg.MaxChunkChars {
			pieces = append(pieces, sb.String())
			sb.Reset()
		}
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		pieces = append(pieces, sb.String())
	}
	return pieces
}

// merge greedily packs segments into chunks up to MaxChunkChars, repeating
// OverlapChars of trailing context from the previous chunk at the head of
// the next one. The overlap counts against the budget, so every chunk stays
// within MaxChunkChars.
func (s *RecursiveSplitter) merge(segments []string) []*types.Chunk {
	chunks := make([]*types.Chunk, 0)
	var sb strings.Builder

	flush := func() string {
		text := sb.String()
		sb.Reset()
		if text == "" {
			return ""
		}
		chunks = append(chunks, &types.Chunk{
			Index:           len(chunks),
			Text:            text,
			EstimatedTokens: s.counter.Count(text),
		})
		return text
	}

	for _, seg := range segments {
		if sb.Len() > 0 && sb.Len()+len(seg) > s.cfg.MaxChunkChars {
			prev := flush()
			if s.cfg.OverlapChars > 0 {
				overlap := tailChars(prev, s.cfg.OverlapChars)
				if len(overlap)+len(seg) <= s.cfg.MaxChunkChars {
					sb.WriteString(overlap)
				}
			}
		}
		sb.WriteString(seg)
	}
	flush()

	return chunks
}

// tailChars returns the last n bytes of text without starting inside a
// multi-byte rune.
func tailChars(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := len(text) - n
	for cut < len(text) && !isRuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
