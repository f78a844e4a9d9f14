package cachekey

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

// MemoryKey identifies a decoded and processed image. Two requests
// producing the same pixels have equal keys.
type MemoryKey struct {
	Identity     string
	Processors   string
	MaxPixelSize int
}

// WorkKey identifies in-flight work. It covers everything that
// changes the outcome of loading, but not the priority.
type WorkKey struct {
	MemoryKey
	CachePolicy request.CachePolicy
	ReadDisk    bool
}

func ForMemory(r request.Request) MemoryKey {
	return MemoryKey{
		Identity:     r.Identity(),
		Processors:   processorsKey(r.Processors),
		MaxPixelSize: r.Options.MaxPixelSize,
	}
}

// ForDisk returns the key of the encoded, processed image. Without
// processors it is the same as the original data key.
func ForDisk(r request.Request) string {
	if len(r.Processors) == 0 {
		return ForOriginalData(r)
	}

	return ForOriginalData(r) + separator + processorsKey(r.Processors)
}

// ForOriginalData returns the key of the raw fetched bytes.
func ForOriginalData(r request.Request) string {
	return escape(r.Identity())
}

// SourceOf returns the image identity a disk key was derived from.
func SourceOf(diskKey string) string {
	source, _, _ := strings.Cut(diskKey, separator)
	return unescape(source)
}

func ForWork(r request.Request) WorkKey {
	return WorkKey{
		MemoryKey:   ForMemory(r),
		CachePolicy: r.Options.CachePolicy,
		ReadDisk:    r.CanReadDisk(),
	}
}

// String lays out the fixed fields first. Components are escaped, so
// different keys never share a string.
func (k MemoryKey) String() string {
	var b strings.Builder
	b.WriteString(escape(k.Identity))
	b.WriteString("|max=")
	b.WriteString(strconv.Itoa(k.MaxPixelSize))
	if k.Processors != "" {
		b.WriteString(separator)
		b.WriteString(k.Processors)
	}

	return b.String()
}

func (k WorkKey) String() string {
	return "policy=" + strconv.Itoa(int(k.CachePolicy)) +
		"|disk=" + strconv.FormatBool(k.ReadDisk) +
		"|" + k.MemoryKey.String()
}

const separator = "|"

var (
	escaper   = strings.NewReplacer("%", "%25", "|", "%7C")
	unescaper = strings.NewReplacer("%7C", "|", "%25", "%")
)

// escape keeps the separator out of key components.
func escape(component string) string {
	return escaper.Replace(component)
}

func unescape(component string) string {
	return unescaper.Replace(component)
}

// processorsKey joins escaped processor identifiers, preserving order.
func processorsKey(processors []processor.Processor) string {
	ids := make([]string, len(processors))
	for i, proc := range processors {
		ids[i] = escape(proc.Identifier())
	}

	return strings.Join(ids, separator)
}

func Hash(key string) uint64 {
	return xxhash.Sum64String(key)
}
