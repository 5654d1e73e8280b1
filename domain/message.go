// Package domain contains core concepts of the triage system.
// This file defines inbound messages and their lifecycle vocabulary.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies one external messaging platform.
type Source string

const (
	SourceLinkedin  Source = "linkedin"
	SourceGmail     Source = "gmail"
	SourceTelegram  Source = "telegram"
	SourceFacebook  Source = "facebook"
	SourceInstagram Source = "instagram"
	SourceSlack     Source = "slack"
)

// KnownSources lists every source the system can be configured with,
// in a stable order used by config parsing and status displays.
func KnownSources() []Source {
	return []Source{
		SourceLinkedin,
		SourceGmail,
		SourceTelegram,
		SourceFacebook,
		SourceInstagram,
		SourceSlack,
	}
}

// Status tracks where a message sits in the operator workflow.
// Transitions move forward only: pending -> processing -> answered|ignored.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusAnswered   Status = "answered"
	StatusIgnored    Status = "ignored"
)

// Category is the classifier's verdict for a message.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryBusiness   Category = "business"
	CategoryPersonal   Category = "personal"
	CategorySupport    Category = "support"
	CategoryNetworking Category = "networking"
	CategorySales      Category = "sales"
)

// ScoredCategories returns the categories the classifier scores,
// in tie-breaking order. CategoryGeneral is the default, never scored.
func ScoredCategories() []Category {
	return []Category{
		CategoryBusiness,
		CategoryPersonal,
		CategorySupport,
		CategoryNetworking,
		CategorySales,
	}
}

// RawMessage is a wire-agnostic fetch result from one connector.
// The registry tags Source before merging batches.
type RawMessage struct {
	Source     Source
	Sender     string
	Content    string
	ReceivedAt time.Time
}

// Message is a classified, persisted queue entry.
// Created by the dispatcher; mutated only through repository transitions.
type Message struct {
	ID         uuid.UUID
	Source     Source
	Sender     string
	Content    string
	ReceivedAt time.Time
	Status     Status
	Category   Category
	Language   string // ISO 639-1, empty when detection was inconclusive
	Answered   bool
	Ignored    bool
}
