// Package protocol implements the binary wire protocol between a session
// server and a remote host.
//
// The server owns the fiber tree and an in-memory host document. After each
// commit it sends the mutations recorded by the document to the client,
// which replays them against its own tree. The client sends events back,
// addressed by node ID.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server event
//   - FrameMutations (0x02): Server → Client mutation batch
//   - FrameError (0x05): Error message, either direction
//
// # Encoding
//
//   - Varint: Compact encoding for node IDs, counts and lengths
//   - Length-prefixed: Strings prefixed with varint length
//   - Big-endian: Float64 property values in IEEE 754 form
//
// # Mutation Batches
//
//	[Seq: varint][Count: varint]{[Op: byte][Node: varint][operands...]}
//
// Operands by op:
//
//	Create          [Tag: string]
//	SetProp         [Name: string][Value]
//	RemoveProp      [Name: string]
//	AddListener     [Event: string]
//	RemoveListener  [Event: string]
//	Append, Remove  [Parent: varint]
//	Insert          [Parent: varint][Ref: varint]
//
// Values are a kind byte followed by a kind-specific body (none for null,
// string for strings, float64 for numbers, one byte for booleans).
//
// # Events
//
//	[Node: varint][Type: string][Value: string]
//
// # Security
//
// Decoders bound every length prefix and collection count so that a
// malicious peer cannot force large allocations.
package protocol
