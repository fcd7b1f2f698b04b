// Package agent turns a seat's view of a hand into a legal decision for an
// automated player.
//
// A Pipeline asks a Provider for a free-text reply, parses it through an
// ordered ParserChain (structured block, then keywords, then the persona's
// default), clamps the result to the legal actions and reports which tier
// produced it. Provider errors and timeouts never surface to the caller:
// they are logged and the persona default is used instead.
//
// Each agent owns a Profile holding traits, dynamic modifiers, emotion,
// bounded memory and running statistics. Profiles are shared by every table
// an agent sits at and serialize their own mutation.
package agent
