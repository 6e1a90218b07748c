package rulecache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// ArtifactSuffix ends the name of every compiled artifact.
const ArtifactSuffix = ".validator.xsl"

// Key identifies a compiled artifact: the rule file's base name plus a
// digest of its content and a discriminator.
type Key struct {
	Base   string
	Digest string
}

// Filename returns the artifact file name, <base>.<digest>.validator.xsl.
func (k Key) Filename() string {
	return fmt.Sprintf("%s.%s%s", k.Base, k.Digest, ArtifactSuffix)
}

func (k Key) String() string {
	return k.Filename()
}

// Digest hashes content followed by discriminator and returns the hex sum.
func Digest(content io.Reader, discriminator string) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, content); err != nil {
		return "", errors.Wrap(err, "failed to hash rule content")
	}
	_, _ = h.WriteString(discriminator)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewKey computes the key of the rule file at path.
func NewKey(path, discriminator string) (Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return Key{}, errors.Wrapf(err, "open rule file %s", path)
	}
	defer f.Close()

	digest, err := Digest(f, discriminator)
	if err != nil {
		return Key{}, err
	}
	return Key{Base: filepath.Base(path), Digest: digest}, nil
}

// Discriminator builds the extra cache discriminator: "verbose" when
// verbose output is requested, followed by any caller supplied extra hash.
func Discriminator(verbose bool, extraHash string) string {
	var b strings.Builder
	if verbose {
		b.WriteString("verbose")
	}
	b.WriteString(extraHash)
	return b.String()
}
