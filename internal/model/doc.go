// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat threads and the conversations remembered in the sidebar.
//
// # Key Types
//
//   - Conversation: Saved thread with a derived title, message count and timestamp
//   - Message: Single immutable message with role, content and timestamp
//   - Role: Closed set of message authors (user, assistant)
//
// # Usage
//
// Build a thread and turn it into a conversation record:
//
//	msgs := []model.Message{
//	    model.NewUserMessage("What is the tallest mountain on Earth?"),
//	}
//	conv := model.Conversation{
//	    ID:           model.NewConversationID(),
//	    Title:        model.DeriveTitle(msgs[0].Content),
//	    UpdatedAt:    time.Now(),
//	    MessageCount: len(msgs),
//	    Messages:     msgs,
//	}
package model
