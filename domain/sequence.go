package domain

import (
	"private-chat/errors"
)

// DirectionState tracks the message sequences one author allocated toward
// the other member of a conversation.
// progress[k] counts the follow-ups accepted for sequence idOffset+k.
type DirectionState struct {
	idOffset uint32
	progress []uint32
}

// Allocate opens a new sequence and returns its id.
func (d *DirectionState) Allocate() uint32 {
	d.progress = append(d.progress, 0)
	return d.idOffset + uint32(len(d.progress)-1)
}

// Advance accepts index only when it is the next one of the sequence.
// Duplicates, gaps and reordering are rejected, never buffered.
func (d *DirectionState) Advance(sequenceID, index uint32) error {
	if sequenceID < d.idOffset {
		return errors.ErrSequenceNotFound
	}
	pos := int(sequenceID - d.idOffset)
	if pos >= len(d.progress) {
		return errors.ErrSequenceNotFound
	}
	have := d.progress[pos]
	if index != have+1 {
		return &errors.OutOfOrderError{SequenceID: sequenceID, Expected: have + 1, Got: index}
	}
	d.progress[pos] = index
	return nil
}

// Allocated is the number of sequences opened so far.
func (d *DirectionState) Allocated() int {
	return len(d.progress)
}
