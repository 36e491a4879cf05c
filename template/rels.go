package template

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

type relationship struct {
	id, typ, target string
}

// parseRels parses an OOXML .rels part.
func parseRels(r io.Reader) ([]relationship, error) {
	dec := xml.NewDecoder(r)
	var rels []relationship
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse rels xml: %w", err)
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == "Relationship" {
			rel := relationship{id: attrVal(t, "Id"), typ: attrVal(t, "Type"), target: attrVal(t, "Target")}
			if rel.id != "" && rel.target != "" {
				rels = append(rels, rel)
			}
		}
	}
	return rels, nil
}

// relsPath returns the .rels part for partPath.
func relsPath(partPath string) string {
	return path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels")
}

// resolveZIPPath resolves a Target from a .rels part. Targets are relative
// to the owning part's directory, the parent of the _rels/ directory.
func resolveZIPPath(relsFilePath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(path.Dir(relsFilePath)), target)
}

// masterOf returns the slide master part a layout points at, or "" when the
// layout has no master relationship.
func masterOf(parts map[string]*zip.File, layoutPath string) (string, error) {
	rp := relsPath(layoutPath)
	f, ok := parts[rp]
	if !ok {
		return "", nil
	}
	data, err := readPart(f)
	if err != nil {
		return "", err
	}
	rels, err := parseRels(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("%s: %w", rp, err)
	}
	for _, rel := range rels {
		if strings.HasSuffix(rel.typ, "/slideMaster") {
			return resolveZIPPath(rp, rel.target), nil
		}
	}
	return "", nil
}
