// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/poiesic/lectern/core"
)

// loadPages reads per-page plain text from a PDF file, a plain-text file
// (form feeds as page separators), or a directory of text files (one page
// per file, ordered by name).
func loadPages(path string) ([]core.Page, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return loadPagesFromDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPagesFromPDF(path)
	}
	return loadPagesFromText(path)
}

func loadPagesFromPDF(path string) ([]core.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []core.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, core.Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}

func loadPagesFromText(path string) ([]core.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pages []core.Page
	for i, text := range strings.Split(string(data), "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, core.Page{Number: i + 1, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text in %s", path)
	}
	return pages, nil
}

func loadPagesFromDir(path string) ([]core.Page, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var pages []core.Page
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		pages = append(pages, core.Page{Number: len(pages) + 1, Text: string(data)})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no page files in %s", path)
	}
	return pages, nil
}
