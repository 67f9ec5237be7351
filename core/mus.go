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


package core

import (
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Written against the
// mus-go primitive serializers; field order is the struct declaration
// order and must not change without a storage migration.

// IDMUS serializes an ID.
var IDMUS = idMUS{}

// DocumentMUS serializes a Document.
var DocumentMUS = documentMUS{}

// ChunkMUS serializes a Chunk.
var ChunkMUS = chunkMUS{}

// KnowledgePointMUS serializes a KnowledgePoint.
var KnowledgePointMUS = knowledgePointMUS{}

// DocumentOutlineMUS serializes a DocumentOutline.
var DocumentOutlineMUS = documentOutlineMUS{}

// AssignmentItemMUS serializes an AssignmentItem.
var AssignmentItemMUS = assignmentItemMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// stringSlice helpers shared by the struct serializers.

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, com.ErrNegativeLength
	}
	v = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalIntSlice(v []int, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, i := range v {
		n += varint.Int.Marshal(i, bs[n:])
	}
	return n
}

func unmarshalIntSlice(bs []byte) (v []int, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, com.ErrNegativeLength
	}
	v = make([]int, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeIntSlice(v []int) (size int) {
	size = varint.Int.Size(len(v))
	for _, i := range v {
		size += varint.Int.Size(i)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, com.ErrNegativeLength
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}

// Timestamps are stored as UnixMicro.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.CourseID, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(string(d.Kind), bs[n:])
	n += ord.String.Marshal(string(d.Status), bs[n:])
	n += ord.String.Marshal(d.StatusDetail, bs[n:])
	n += varint.Int.Marshal(d.PageCount, bs[n:])
	n += marshalTime(d.InsertedAt, bs[n:])
	n += marshalTime(d.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if d.CourseID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var kind, status string
	if kind, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	d.Kind = DocumentKind(kind)
	if status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	d.Status = DocumentStatus(status)
	if d.StatusDetail, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.PageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	size = ord.String.Size(d.Id)
	size += ord.String.Size(d.CourseID)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(string(d.Kind))
	size += ord.String.Size(string(d.Status))
	size += ord.String.Size(d.StatusDetail)
	size += varint.Int.Size(d.PageCount)
	size += sizeTime(d.InsertedAt)
	size += sizeTime(d.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.DocumentID, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += varint.Int.Marshal(c.Metadata.Page, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.DocumentID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Metadata.Page, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.DocumentID)
	size += ord.String.Size(c.Content)
	size += varint.Int.Size(c.Metadata.Page)
	size += sizeVector(c.Vector)
	size += sizeTime(c.InsertedAt)
	return size
}

type knowledgePointMUS struct{}

func (knowledgePointMUS) Marshal(p KnowledgePoint, bs []byte) (n int) {
	n = ord.String.Marshal(p.Title, bs)
	n += ord.String.Marshal(p.Definition, bs[n:])
	n += marshalStringSlice(p.KeyFormulas, bs[n:])
	n += marshalStringSlice(p.KeyConcepts, bs[n:])
	n += marshalStringSlice(p.Examples, bs[n:])
	n += marshalIntSlice(p.SourcePages, bs[n:])
	return n
}

func (knowledgePointMUS) Unmarshal(bs []byte) (p KnowledgePoint, n int, err error) {
	var n1 int
	if p.Title, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if p.Definition, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.KeyFormulas, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.KeyConcepts, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.Examples, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	if p.SourcePages, n1, err = unmarshalIntSlice(bs[n:]); err != nil {
		return p, n + n1, err
	}
	n += n1
	return p, n, nil
}

func (knowledgePointMUS) Size(p KnowledgePoint) (size int) {
	size = ord.String.Size(p.Title)
	size += ord.String.Size(p.Definition)
	size += sizeStringSlice(p.KeyFormulas)
	size += sizeStringSlice(p.KeyConcepts)
	size += sizeStringSlice(p.Examples)
	size += sizeIntSlice(p.SourcePages)
	return size
}

type documentOutlineMUS struct{}

func (documentOutlineMUS) Marshal(o DocumentOutline, bs []byte) (n int) {
	n = ord.String.Marshal(o.DocumentID, bs)
	n += ord.String.Marshal(o.Title, bs[n:])
	n += ord.String.Marshal(o.Subject, bs[n:])
	n += varint.Int.Marshal(o.TotalKnowledgePoints, bs[n:])
	n += varint.Int.Marshal(len(o.Sections), bs[n:])
	for _, s := range o.Sections {
		n += ord.String.Marshal(s.Title, bs[n:])
		n += marshalStringSlice(s.KnowledgePoints, bs[n:])
		n += ord.String.Marshal(s.BriefDescription, bs[n:])
	}
	n += ord.String.Marshal(o.Summary, bs[n:])
	return n
}

func (documentOutlineMUS) Unmarshal(bs []byte) (o DocumentOutline, n int, err error) {
	var n1 int
	if o.DocumentID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if o.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.Subject, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if o.TotalKnowledgePoints, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	var count int
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	if count < 0 {
		return o, n, com.ErrNegativeLength
	}
	if count > 0 {
		o.Sections = make([]OutlineSection, count)
		for i := 0; i < count; i++ {
			if o.Sections[i].Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return o, n + n1, err
			}
			n += n1
			if o.Sections[i].KnowledgePoints, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
				return o, n + n1, err
			}
			n += n1
			if o.Sections[i].BriefDescription, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return o, n + n1, err
			}
			n += n1
		}
	}
	if o.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return o, n + n1, err
	}
	n += n1
	return o, n, nil
}

func (documentOutlineMUS) Size(o DocumentOutline) (size int) {
	size = ord.String.Size(o.DocumentID)
	size += ord.String.Size(o.Title)
	size += ord.String.Size(o.Subject)
	size += varint.Int.Size(o.TotalKnowledgePoints)
	size += varint.Int.Size(len(o.Sections))
	for _, s := range o.Sections {
		size += ord.String.Size(s.Title)
		size += sizeStringSlice(s.KnowledgePoints)
		size += ord.String.Size(s.BriefDescription)
	}
	size += ord.String.Size(o.Summary)
	return size
}

type assignmentItemMUS struct{}

func (assignmentItemMUS) Marshal(a AssignmentItem, bs []byte) (n int) {
	n = ord.String.Marshal(a.Title, bs)
	n += varint.Int.Marshal(a.OrderNum, bs[n:])
	n += ord.String.Marshal(a.Content, bs[n:])
	n += marshalStringSlice(a.Options, bs[n:])
	n += ord.String.Marshal(a.ReferenceAnswer, bs[n:])
	n += ord.String.Marshal(a.Explanation, bs[n:])
	n += varint.Int.Marshal(a.Points, bs[n:])
	n += ord.String.Marshal(a.Type, bs[n:])
	n += ord.String.Marshal(a.Difficulty, bs[n:])
	n += ord.Bool.Marshal(a.ParentIndex != nil, bs[n:])
	if a.ParentIndex != nil {
		n += varint.Int.Marshal(*a.ParentIndex, bs[n:])
	}
	n += marshalIntSlice(a.SourcePages, bs[n:])
	n += marshalStringSlice(a.Warnings, bs[n:])
	return n
}

func (assignmentItemMUS) Unmarshal(bs []byte) (a AssignmentItem, n int, err error) {
	var n1 int
	if a.Title, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if a.OrderNum, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Options, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.ReferenceAnswer, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Explanation, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Points, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Type, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Difficulty, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	var hasParent bool
	if hasParent, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if hasParent {
		var parent int
		if parent, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
			return a, n + n1, err
		}
		n += n1
		a.ParentIndex = &parent
	}
	if a.SourcePages, n1, err = unmarshalIntSlice(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Warnings, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	return a, n, nil
}

func (assignmentItemMUS) Size(a AssignmentItem) (size int) {
	size = ord.String.Size(a.Title)
	size += varint.Int.Size(a.OrderNum)
	size += ord.String.Size(a.Content)
	size += sizeStringSlice(a.Options)
	size += ord.String.Size(a.ReferenceAnswer)
	size += ord.String.Size(a.Explanation)
	size += varint.Int.Size(a.Points)
	size += ord.String.Size(a.Type)
	size += ord.String.Size(a.Difficulty)
	size += ord.Bool.Size(a.ParentIndex != nil)
	if a.ParentIndex != nil {
		size += varint.Int.Size(*a.ParentIndex)
	}
	size += sizeIntSlice(a.SourcePages)
	size += sizeStringSlice(a.Warnings)
	return size
}
