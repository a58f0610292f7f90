// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package draft

import "pagecraft/internal/models"

// Reorder moves the block sourceID so that it sits where targetID sits
// once the source has been lifted out of the sequence. Every other block
// keeps its relative order. Dropping a block below its target therefore
// lands it directly before the target:
//
//	[x a y b z] Reorder(a, b) => [x y a b z]
//	[x a y b z] Reorder(b, a) => [x b a y z]
//
// The input slice is never modified. ok is false, and the input returned
// unchanged, when the ids are equal, either id is absent or the move would
// leave the order as it was.
func Reorder(blocks []models.Block, sourceID, targetID string) ([]models.Block, bool) {
	if sourceID == targetID {
		return blocks, false
	}
	from := indexOf(blocks, sourceID)
	if from < 0 || indexOf(blocks, targetID) < 0 {
		return blocks, false
	}

	rest := make([]models.Block, 0, len(blocks))
	rest = append(rest, blocks[:from]...)
	rest = append(rest, blocks[from+1:]...)

	to := indexOf(rest, targetID)
	if to == from {
		return blocks, false
	}
	return insertAt(rest, to, blocks[from]), true
}

// MoveTo moves the block sourceID to an absolute index, clamped to the
// sequence bounds. It covers drops at the very start or end of the page,
// which have no block to target. ok is false when nothing moves.
func MoveTo(blocks []models.Block, sourceID string, index int) ([]models.Block, bool) {
	from := indexOf(blocks, sourceID)
	if from < 0 {
		return blocks, false
	}
	to := clamp(index, 0, len(blocks)-1)
	if from == to {
		return blocks, false
	}
	return Move(blocks, from, to), true
}

// Move returns a copy of items with the element at from relocated to to.
// Elements between the two positions shift by one.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	moved := items[from]
	for i, it := range items {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, moved)
		}
		out = append(out, it)
	}
	if len(out) < len(items) {
		out = append(out, moved)
	}
	return out
}

func insertAt(blocks []models.Block, at int, b models.Block) []models.Block {
	out := make([]models.Block, 0, len(blocks)+1)
	out = append(out, blocks[:at]...)
	out = append(out, b)
	out = append(out, blocks[at:]...)
	return out
}

func indexOf(blocks []models.Block, id string) int {
	if id == "" {
		return -1
	}
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
