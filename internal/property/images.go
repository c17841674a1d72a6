package property

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// Bucket is the storage bucket listing images live in.
const Bucket = "properties"

// PublicURL resolves an image reference to something a client can fetch.
// Absolute http(s) URLs and site-relative paths are returned unchanged;
// anything else is treated as a path inside bucket on the storage host.
func PublicURL(storageBase, bucket, ref string) string {
	if ref == "" {
		return ""
	}
	if isAbsolute(ref) || strings.HasPrefix(ref, "/") {
		return ref
	}
	base := strings.TrimRight(storageBase, "/")
	return base + "/storage/v1/object/public/" + bucket + "/" + strings.TrimLeft(ref, "/")
}

// SplitImageList parses a comma separated list of image references,
// dropping blanks.
func SplitImageList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isAbsolute(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses every run of other characters into a
// single hyphen.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// UniqueName builds a storage object name for an uploaded file:
// <unix-ms>-<token>-<slug>.<ext>. The extension is kept as given.
func UniqueName(original string, now time.Time, token string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%d-%s-%s", now.UnixMilli(), token, Slug(stem))
	if len(ext) > 1 {
		name += ext
	}
	return name
}
