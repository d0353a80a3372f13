package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontDPI converts point sizes to pixels the way the desktop toolkits do.
const FontDPI = 96

// FontStyle selects a face weight.
type FontStyle int

const (
	// FontStyleRegular is the regular weight.
	FontStyleRegular FontStyle = iota
	// FontStyleBold is the bold weight.
	FontStyleBold
)

// String returns the style name.
func (fs FontStyle) String() string {
	switch fs {
	case FontStyleRegular:
		return "regular"
	case FontStyleBold:
		return "bold"
	default:
		return "unknown"
	}
}

type faceKey struct {
	style FontStyle
	size  float64
}

// FontManager parses the embedded Go fonts once and caches one face per
// style and size. Faces are not safe for concurrent drawing; callers
// serialize rendering.
type FontManager struct {
	mu    sync.Mutex
	fonts map[FontStyle]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFontManager parses the embedded regular and bold Go fonts.
func NewFontManager() (*FontManager, error) {
	fm := &FontManager{
		fonts: make(map[FontStyle]*opentype.Font, 2),
		faces: make(map[faceKey]font.Face),
	}
	for style, data := range map[FontStyle][]byte{
		FontStyleRegular: goregular.TTF,
		FontStyleBold:    gobold.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", style, err)
		}
		fm.fonts[style] = f
	}
	return fm, nil
}

// Face returns the face for style at size points, creating it on first use.
func (fm *FontManager) Face(style FontStyle, size float64) (font.Face, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	key := faceKey{style: style, size: size}
	if face, ok := fm.faces[key]; ok {
		return face, nil
	}
	f, ok := fm.fonts[style]
	if !ok {
		return nil, fmt.Errorf("no font for style %s", style)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     FontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("face %s %.0fpt: %w", style, size, err)
	}
	fm.faces[key] = face
	return face, nil
}

// Close releases every cached face.
func (fm *FontManager) Close() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	for key, face := range fm.faces {
		_ = face.Close()
		delete(fm.faces, key)
	}
}
