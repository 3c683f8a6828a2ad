// Package models defines the core domain models for club settlements and OCR scans.
//
// # Settlement Models
//
// A meeting's shared expense is represented by:
//   - FeeBreakdown: game, food and other fees in won
//   - Participant: a member taking part in the split, optionally excluded from food
//   - SettlementMember: one participant's computed amount and payment state
//   - Settlement: the aggregate, unique per meeting
//
// # Scan Models
//
// ReceiptResult and ScoreSheetResult are transient results of parsing OCR text.
// They are never persisted; the caller decides whether to apply their values.
//
// # Enumerations
//
// String-backed enums (SettlementStatus, Gender, MemberStatus) are closed sets.
// Each has a Parse function that documents the fallback used for unknown input,
// so stored values written by older clients still load.
//
// # Design Principles
//
//  1. Money is always an integer number of won (money.Money), never a float.
//  2. Relationships use ID strings, not pointers.
//  3. Timestamps are passed in by callers; nothing here reads the wall clock.
package models
