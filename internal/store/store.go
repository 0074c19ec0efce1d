// Package store persists a built index to a directory and loads it back.
// The directory is fully self-contained: searching needs no access to the
// original corpus. It holds three artifacts: the postings segment
// (postings.rsx), the document catalog (catalog.json), and the corpus stats
// (stats.json). A missing or malformed artifact surfaces as ErrIndexCorrupt;
// loading never degrades to partial results.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/czhharrison/Ranked-Retrieval-Search-Engine/internal/index"
	rankerrors "github.com/czhharrison/Ranked-Retrieval-Search-Engine/pkg/errors"
)

// MagicBytes identifies a valid postings segment file.
const (
	MagicBytes    uint32 = 0x52534958
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 16

	postingsFile = "postings.rsx"
	catalogFile  = "catalog.json"
	statsFile    = "stats.json"
)

// segmentHeader is the fixed-size header written at the start of the
// postings segment.
type segmentHeader struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	CreatedAt  int64
	DictOffset int64
	DictSize   int64
	PostOffset int64
	PostSize   int64
}

// dictEntry maps a term to its postings block offset and length within the
// segment file.
type dictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
}

// docPostings is the serialized form of one document's position list for a
// term. Position order is preserved exactly.
type docPostings struct {
	DocID     index.DocID `json:"d"`
	Positions []int       `json:"p"`
}

// Save persists the index, catalog, and stats into dir, creating it if
// needed. Every artifact is written to a temp file and renamed into place, so
// a crashed save never leaves a half-written artifact behind.
func Save(dir string, idx index.PositionalIndex, catalog index.Catalog, stats index.CorpusStats) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := writeSegment(filepath.Join(dir, postingsFile), idx, stats.Documents); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, catalogFile), catalog); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, statsFile), stats)
}

// Load reads the three artifacts back from dir. The result round-trips
// exactly: Load(Save(x)) reproduces x.
func Load(dir string) (index.PositionalIndex, index.Catalog, index.CorpusStats, error) {
	idx, err := readSegment(filepath.Join(dir, postingsFile))
	if err != nil {
		return nil, nil, index.CorpusStats{}, err
	}
	var catalog index.Catalog
	if err := readJSON(filepath.Join(dir, catalogFile), &catalog); err != nil {
		return nil, nil, index.CorpusStats{}, err
	}
	var stats index.CorpusStats
	if err := readJSON(filepath.Join(dir, statsFile), &stats); err != nil {
		return nil, nil, index.CorpusStats{}, err
	}
	if stats.Documents != len(catalog) {
		return nil, nil, index.CorpusStats{}, fmt.Errorf(
			"%w: stats report %d documents but catalog holds %d",
			rankerrors.ErrIndexCorrupt, stats.Documents, len(catalog))
	}
	return idx, catalog, stats, nil
}

// writeSegment serializes the postings into a single segment file: header,
// one JSON postings block per term, a sorted term dictionary, and a footer
// carrying a CRC32 of the dictionary.
func writeSegment(path string, idx index.PositionalIndex, docCount int) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp segment file: %w", err)
	}
	defer f.Close()

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.Write(headerBytes); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	terms := make([]string, 0, len(idx))
	for term := range idx {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	postingsStart := int64(HeaderSize)
	offset := postingsStart
	dict := make([]dictEntry, 0, len(terms))
	for _, term := range terms {
		block := postingsBlock(idx[term])
		data, err := json.Marshal(block)
		if err != nil {
			return fmt.Errorf("marshaling postings for term %q: %w", term, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", term, err)
		}
		dict = append(dict, dictEntry{
			Term:       term,
			PostOffset: offset - postingsStart,
			PostLen:    len(data),
		})
		offset += int64(len(data))
	}

	dictStart := offset
	dictData, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := f.Write(dictData); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	if _, err := f.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}

	binary.LittleEndian.PutUint32(headerBytes[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(headerBytes[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(headerBytes[8:12], uint32(len(terms)))
	binary.LittleEndian.PutUint32(headerBytes[12:16], uint32(docCount))
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(dictStart))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(headerBytes[40:48], uint64(postingsStart))
	binary.LittleEndian.PutUint64(headerBytes[48:56], uint64(dictStart-postingsStart))
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		return fmt.Errorf("updating header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming segment file: %w", err)
	}
	return nil
}

// readSegment loads the full postings segment into an in-memory index.
func readSegment(path string) (index.PositionalIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening postings segment: %v", rankerrors.ErrIndexCorrupt, err)
	}
	defer f.Close()

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		return nil, fmt.Errorf("%w: reading segment header: %v", rankerrors.ErrIndexCorrupt, err)
	}
	header := segmentHeader{
		Magic:      binary.LittleEndian.Uint32(headerBytes[0:4]),
		Version:    binary.LittleEndian.Uint32(headerBytes[4:8]),
		TermCount:  binary.LittleEndian.Uint32(headerBytes[8:12]),
		DocCount:   binary.LittleEndian.Uint32(headerBytes[12:16]),
		CreatedAt:  int64(binary.LittleEndian.Uint64(headerBytes[16:24])),
		DictOffset: int64(binary.LittleEndian.Uint64(headerBytes[24:32])),
		DictSize:   int64(binary.LittleEndian.Uint64(headerBytes[32:40])),
		PostOffset: int64(binary.LittleEndian.Uint64(headerBytes[40:48])),
		PostSize:   int64(binary.LittleEndian.Uint64(headerBytes[48:56])),
	}
	if header.Magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", rankerrors.ErrIndexCorrupt, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported segment version %d", rankerrors.ErrIndexCorrupt, header.Version)
	}

	dictData := make([]byte, header.DictSize)
	if _, err := f.ReadAt(dictData, header.DictOffset); err != nil {
		return nil, fmt.Errorf("%w: reading dictionary: %v", rankerrors.ErrIndexCorrupt, err)
	}
	footer := make([]byte, FooterSize)
	if _, err := f.ReadAt(footer, header.DictOffset+header.DictSize); err != nil {
		return nil, fmt.Errorf("%w: reading footer: %v", rankerrors.ErrIndexCorrupt, err)
	}
	if checksum := binary.LittleEndian.Uint32(footer[0:4]); checksum != crc32.ChecksumIEEE(dictData) {
		return nil, fmt.Errorf("%w: dictionary checksum mismatch", rankerrors.ErrIndexCorrupt)
	}
	var dict []dictEntry
	if err := json.Unmarshal(dictData, &dict); err != nil {
		return nil, fmt.Errorf("%w: parsing dictionary: %v", rankerrors.ErrIndexCorrupt, err)
	}
	if len(dict) != int(header.TermCount) {
		return nil, fmt.Errorf("%w: header promises %d terms, dictionary holds %d",
			rankerrors.ErrIndexCorrupt, header.TermCount, len(dict))
	}

	idx := make(index.PositionalIndex, len(dict))
	for _, entry := range dict {
		data := make([]byte, entry.PostLen)
		if _, err := f.ReadAt(data, header.PostOffset+entry.PostOffset); err != nil {
			return nil, fmt.Errorf("%w: reading postings for term %q: %v",
				rankerrors.ErrIndexCorrupt, entry.Term, err)
		}
		var block []docPostings
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("%w: parsing postings for term %q: %v",
				rankerrors.ErrIndexCorrupt, entry.Term, err)
		}
		docs := make(map[index.DocID][]int, len(block))
		for _, dp := range block {
			docs[dp.DocID] = dp.Positions
		}
		idx[entry.Term] = docs
	}
	return idx, nil
}

// postingsBlock flattens a term's document map into DocID order for a
// deterministic on-disk layout.
func postingsBlock(docs map[index.DocID][]int) []docPostings {
	block := make([]docPostings, 0, len(docs))
	for docID, positions := range docs {
		block = append(block, docPostings{DocID: docID, Positions: positions})
	}
	sort.Slice(block, func(i, j int) bool { return block[i].DocID < block[j].DocID })
	return block
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", rankerrors.ErrIndexCorrupt, filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", rankerrors.ErrIndexCorrupt, filepath.Base(path), err)
	}
	return nil
}
