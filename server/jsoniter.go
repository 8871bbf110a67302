// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"github.com/SoftbearStudios/offroad/server/terrain"
	jsoniter "github.com/json-iterator/go"
	"reflect"
	"sort"
	"sync"
	"unsafe"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterFieldEncoderFunc(reflect.TypeOf(ChunkUpdate{}).String(), "Activated", encodeChunkUpdateActivated, emptyChunkData)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(terrain.ChunkCoord{}).String(), encodeChunkCoord, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

var sortedChunksPool = sync.Pool{
	New: func() interface{} {
		slice := make([]*ChunkData, 0, poolChunksCap)
		return &slice
	},
}

// Encodes ChunkUpdate.Activated as a map in json, keyed by chunk coordinate
func encodeChunkUpdateActivated(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	chunks := *(*[]ChunkData)(ptr)

	// Reallocate to slice of pointers for faster swaps
	sortedChunksPtr := sortedChunksPool.Get().(*[]*ChunkData)
	sortedChunks := *sortedChunksPtr

	for i := range chunks {
		sortedChunks = append(sortedChunks, &chunks[i])
	}

	sort.Slice(sortedChunks, func(i, j int) bool {
		return sortedChunks[i].Coord.Less(sortedChunks[j].Coord)
	})

	stream.WriteObjectStart()
	first := true
	for _, c := range sortedChunks {
		if first {
			first = false
		} else {
			stream.WriteMore()
		}

		// Flush stream because buffer is 512 bytes and chunk data is larger
		if stream.Error != nil {
			return
		}
		_ = stream.Flush()

		// Map key of ChunkCoord quoted
		stream.SetBuffer(append(c.Coord.AppendText(append(stream.Buffer(), '"')), '"', ':'))

		// Map value of heightmap
		stream.WriteVal(c.Data)
	}
	stream.WriteObjectEnd()

	// Clear pointers
	for i := range sortedChunks {
		sortedChunks[i] = nil
	}

	// Pool sorted chunks with pointer to slice as to not allocate slice header
	*sortedChunksPtr = sortedChunks[:0]
	sortedChunksPool.Put(sortedChunksPtr)
}

func emptyChunkData(ptr unsafe.Pointer) bool {
	return len(*(*[]ChunkData)(ptr)) == 0
}

func encodeChunkCoord(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	coord := *(*terrain.ChunkCoord)(ptr)
	// Quoted "x,z"
	stream.SetBuffer(append(coord.AppendText(append(stream.Buffer(), '"')), '"'))
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

func decodeMessage(ptr unsafe.Pointer, topLevelIter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)

	// Read bytes so can read twice
	messageBytes := topLevelIter.SkipAndAppendBytes(*bufPtr)

	// Pool iterator with previous pool
	pool := topLevelIter.Pool()
	iter := pool.BorrowIterator(messageBytes)
	defer pool.ReturnIterator(iter)

	// Interface of *inbound
	var in interface{}

	// Doesn't have to read twice if type is first field
	// If type is found c is > 0
	for c := 0; c < 3; c++ {
		iter.ResetBytes(messageBytes)
		iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
			if field == "type" {
				// Not already read
				if in == nil {
					messageTypeBytes := i.ReadStringAsSlice()
					inboundType, ok := inboundMessageTypes[messageType(messageTypeBytes)]
					if !ok {
						inboundType = reflect.TypeOf(InvalidInbound{})
					}
					in = reflect.New(inboundType).Interface()

					if !ok {
						in.(*InvalidInbound).messageType = messageType(messageTypeBytes)
					}

					c++
				} else {
					i.Skip()
				}
				return true
			} else if field == "data" {
				// Found type
				if c > 0 {
					i.ReadVal(in)
					c++
					return false // Finished
				} else {
					i.Skip()
				}
			} else {
				i.Skip()
			}
			return true
		})

		if err := iter.Error; err != nil {
			topLevelIter.Error = err
			return
		}

		// No message type
		if c == 0 {
			topLevelIter.Error = errors.New("no inbound message type")
			return
		}
	}

	// Pool messageBytes
	*bufPtr = messageBytes[:0]
	decodeMessagePool.Put(bufPtr)

	// Store data
	message := (*Message)(ptr)
	message.Data = reflect.Indirect(reflect.ValueOf(in)).Interface()
}
