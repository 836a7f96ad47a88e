// Package content classifies clipboard mime types into the fixed set of
// representations wlgrab understands, picks the preferred one from an
// offer's announced set, and decodes the transferred bytes.
package content

// Kind is one supported clipboard representation: an image subtype or a
// text subtype. The set is closed; mime strings outside it never become
// Kinds. Declaration order of the subtypes is the preference order, and
// every image kind outranks every text kind.
type Kind interface {
	// Mime returns the wire mime string used to request this kind.
	Mime() string
	rank() int
}

// ImageKind enumerates the supported image representations.
type ImageKind int

const (
	ImagePNG ImageKind = iota

	numImageKinds
)

// TextKind enumerates the supported text representations. The legacy
// X selection atoms (UTF8_STRING, STRING, TEXT) are still advertised by
// plenty of toolkits, so they rank below the proper mime forms.
type TextKind int

const (
	TextPlainUTF8 TextKind = iota
	TextPlain
	TextUTF8String
	TextString
	TextText
)

var imageMimes = [numImageKinds]string{
	ImagePNG: "image/png",
}

var textMimes = [...]string{
	TextPlainUTF8:  "text/plain;charset=utf-8",
	TextPlain:      "text/plain",
	TextUTF8String: "UTF8_STRING",
	TextString:     "STRING",
	TextText:       "TEXT",
}

func (k ImageKind) Mime() string { return imageMimes[k] }
func (k ImageKind) rank() int    { return int(k) }

func (k TextKind) Mime() string { return textMimes[k] }
func (k TextKind) rank() int    { return int(numImageKinds) + int(k) }

// kindByMime is the static classification table; built once from the
// subtype declarations so the two can never drift apart.
var kindByMime = func() map[string]Kind {
	m := make(map[string]Kind, len(imageMimes)+len(textMimes))
	for k, mime := range imageMimes {
		m[mime] = ImageKind(k)
	}
	for k, mime := range textMimes {
		m[mime] = TextKind(k)
	}
	return m
}()

// ParseMime classifies a raw mime string. Unrecognized strings report
// false; they are not an error, peers advertise all sorts of types.
func ParseMime(mime string) (Kind, bool) {
	k, ok := kindByMime[mime]
	return k, ok
}

// PickPasteMime returns the most preferred kind in the announced set, or
// false if the set is empty. Pure and deterministic: the same input set
// always selects the same kind.
func PickPasteMime(kinds []Kind) (Kind, bool) {
	var best Kind
	for _, k := range kinds {
		if best == nil || k.rank() < best.rank() {
			best = k
		}
	}
	return best, best != nil
}
