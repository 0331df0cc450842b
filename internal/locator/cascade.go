// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"regexp"
	"strings"

	"go.mystapp.dev/internal/dom"
)

// Strategy is one heuristic in a Cascade.
type Strategy struct {
	Name  string
	Match func(dom.Element) bool
}

// Cascade is an ordered list of strategies evaluated against the elements matched by Candidates.
type Cascade struct {
	// Candidates is the CSS selector a page uses to collect elements for the strategies.
	Candidates string
	Strategies []Strategy
}

// Select returns the first visible element accepted by the highest priority strategy that accepts any.
// It never returns more than one element, so document order breaks ties within a strategy.
func (c Cascade) Select(elements []dom.Element) (dom.Element, string, bool) {
	for _, s := range c.Strategies {
		for _, e := range elements {
			if e.Visible && s.Match(e) {
				return e, s.Name, true
			}
		}
	}
	return dom.Element{}, "", false
}

// Excluding returns a copy of the cascade that never selects the element with the given ref.
func (c Cascade) Excluding(ref string) Cascade {
	strategies := make([]Strategy, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		match := s.Match
		strategies = append(strategies, Strategy{
			Name:  s.Name,
			Match: func(e dom.Element) bool { return e.Ref != ref && match(e) },
		})
	}
	return Cascade{Candidates: c.Candidates, Strategies: strategies}
}

// Override builds the cascade used when a field's selector is provided explicitly.
func Override(css string) Cascade {
	return Cascade{
		Candidates: css,
		Strategies: []Strategy{{Name: "override", Match: func(dom.Element) bool { return true }}},
	}
}

const (
	textCandidates   = `input:not([type=hidden]), textarea, [role=textbox], [role=combobox], [contenteditable=true]`
	buttonCandidates = `button, input[type=submit], input[type=button], input[type=image], [role=button], a`
	gridCandidates   = `table, [role=grid], [role=table], [role=treegrid]`
	linkCandidates   = `a, [role=link], [role=gridcell], td`
	noticeCandidates = `td, div, span, p, li, [role=status], [role=alert], [role=row]`
)

var (
	usernameRe  = regexp.MustCompile(`(?i)user\s*(name|id)?|login|e-?mail|account|member`)
	passwordRe  = regexp.MustCompile(`(?i)pass\s*(word|code|phrase)?|\bpin\b`)
	submitRe    = regexp.MustCompile(`(?i)^\s*(log\s*in|log\s*on|sign\s*in|submit|continue|next)\s*$`)
	submitTxtRe = regexp.MustCompile(`(?i)log\s*(in|on)|sign\s*in`)
	startRe     = regexp.MustCompile(`(?i)start|from|begin`)
	endRe       = regexp.MustCompile(`(?i)\bend|\bto\b|until|through|thru`)
	refreshRe   = regexp.MustCompile(`(?i)refresh|search|apply|filter|reload|\bgo\b|\brun\b`)
	noRecordsRe = regexp.MustCompile(`(?i)no\s+(matching\s+)?(records|data|results|rows|items)`)
)

func textLike(e dom.Element) bool {
	if e.IsPassword() {
		return false
	}
	switch e.Tag {
	case "textarea":
		return true
	case "input":
		switch strings.ToLower(e.Type) {
		case "", "text", "email", "tel", "search", "date", "number":
			return true
		}
		return false
	}
	return e.Role == "textbox" || e.Role == "combobox"
}

func described(re *regexp.Regexp, e dom.Element) bool {
	return re.MatchString(e.Placeholder) || re.MatchString(e.AriaLabel)
}

func attributed(re *regexp.Regexp, e dom.Element) bool {
	return re.MatchString(e.Name) || re.MatchString(e.ID)
}

func labelled(re *regexp.Regexp) func(dom.Element) bool {
	return func(e dom.Element) bool { return re.MatchString(e.Label) }
}

func and(preds ...func(dom.Element) bool) func(dom.Element) bool {
	return func(e dom.Element) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

func dateCascade(re *regexp.Regexp) Cascade {
	return Cascade{
		Candidates: textCandidates,
		Strategies: []Strategy{
			{Name: "label", Match: and(textLike, labelled(re))},
			{Name: "placeholder", Match: and(textLike, func(e dom.Element) bool { return described(re, e) })},
			{Name: "attribute", Match: and(textLike, func(e dom.Element) bool { return attributed(re, e) })},
		},
	}
}

// Default returns the heuristic cascade for a field.
func Default(f Field) Cascade {
	switch f {
	case Username:
		return Cascade{
			Candidates: textCandidates,
			Strategies: []Strategy{
				{Name: "label", Match: and(textLike, labelled(usernameRe))},
				{Name: "placeholder", Match: and(textLike, func(e dom.Element) bool { return described(usernameRe, e) })},
				{Name: "attribute", Match: and(textLike, func(e dom.Element) bool { return attributed(usernameRe, e) })},
				{Name: "email-input", Match: func(e dom.Element) bool { return e.Tag == "input" && strings.EqualFold(e.Type, "email") }},
				{Name: "textbox", Match: textLike},
			},
		}
	case Password:
		return Cascade{
			Candidates: `input[type=password], ` + textCandidates,
			Strategies: []Strategy{
				{Name: "label", Match: and(dom.Element.IsPassword, labelled(passwordRe))},
				{Name: "placeholder", Match: and(dom.Element.IsPassword, func(e dom.Element) bool { return described(passwordRe, e) })},
				{Name: "password-input", Match: dom.Element.IsPassword},
			},
		}
	case Submit:
		return Cascade{
			Candidates: buttonCandidates,
			Strategies: []Strategy{
				{Name: "role", Match: func(e dom.Element) bool { return e.Role == "button" && submitRe.MatchString(e.AccessibleName()) }},
				{Name: "submit-input", Match: func(e dom.Element) bool { return strings.EqualFold(e.Type, "submit") }},
				{Name: "button-text", Match: func(e dom.Element) bool { return e.Role == "button" && submitTxtRe.MatchString(e.Text) }},
			},
		}
	case StartDate:
		return dateCascade(startRe)
	case EndDate:
		return dateCascade(endRe)
	case Grid:
		return Cascade{
			Candidates: gridCandidates,
			Strategies: []Strategy{
				{Name: "grid-role", Match: func(e dom.Element) bool { return e.Role == "grid" || e.Role == "treegrid" }},
				{Name: "table-role", Match: func(e dom.Element) bool { return e.Role == "table" }},
				{Name: "table", Match: func(e dom.Element) bool { return e.Tag == "table" }},
			},
		}
	case RecordCell:
		return Cascade{
			Candidates: linkCandidates,
			Strategies: []Strategy{
				{Name: "link", Match: func(e dom.Element) bool { return e.Role == "link" }},
				{Name: "anchor", Match: func(e dom.Element) bool { return e.Tag == "a" }},
				{Name: "cell", Match: func(e dom.Element) bool { return strings.TrimSpace(e.Text) != "" }},
			},
		}
	case Refresh:
		return Cascade{
			Candidates: buttonCandidates,
			Strategies: []Strategy{
				{Name: "role", Match: func(e dom.Element) bool { return e.Role == "button" && refreshRe.MatchString(e.AccessibleName()) }},
				{Name: "submit-input", Match: func(e dom.Element) bool { return strings.EqualFold(e.Type, "submit") }},
			},
		}
	case NoRecords:
		return Cascade{
			Candidates: noticeCandidates,
			Strategies: []Strategy{
				{Name: "status", Match: func(e dom.Element) bool {
					return (e.Role == "status" || e.Role == "alert") && noRecordsRe.MatchString(e.Text)
				}},
				{Name: "text", Match: func(e dom.Element) bool { return noRecordsRe.MatchString(e.Text) }},
			},
		}
	default:
		return Cascade{}
	}
}
