package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
)

// RenderJUnit takes a snapshot of the store and renders it to the JUnit
// document shape required by spec.md §4.5: one <testsuites> wrapping one
// <testsuite>, one <testcase> per recorded transaction, a <failure> for
// failing ones, and a <system-out> block of testcase properties.
//
// Two consecutive calls with no intervening Append produce byte-identical
// output: rendering is a pure function of the snapshot.
func (s *Store) RenderJUnit(suiteName string) []byte {
	tcs, total, failed := s.Snapshot()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<testsuites tests="%d" failures="%d">`, total, failed))
	b.WriteString(fmt.Sprintf(`<testsuite name=%s tests="%d" failures="%d">`, xmlAttr(suiteName), total, failed))

	for _, tc := range tcs {
		writeTestcase(&b, tc)
	}

	b.WriteString(`</testsuite></testsuites>`)
	return []byte(b.String())
}

func writeTestcase(b *strings.Builder, tc ovp.Testcase) {
	b.WriteString(fmt.Sprintf(`<testcase name=%s time="%s">`,
		xmlAttr(tc.Name), strconv.FormatFloat(tc.ElapsedSeconds, 'f', 3, 64)))

	if tc.Outcome.Failed {
		b.WriteString(fmt.Sprintf(`<failure type=%s message=%s/>`,
			xmlAttr(string(tc.Outcome.Kind)), xmlAttr(tc.Outcome.Message)))
	}

	b.WriteString(`<system-out>`)
	for _, p := range tc.Properties {
		b.WriteString(xmlText(fmt.Sprintf("[[PROPERTY|%s=%s]]\n", p.Key, p.Value)))
		b.WriteString(xmlText(fmt.Sprintf("%s=%s\n", p.Key, p.Value)))
	}
	b.WriteString(`</system-out>`)

	b.WriteString(`</testcase>`)
}

// xmlAttr renders an XML attribute value, quotes included, with & < > " '
// escaped.
func xmlAttr(s string) string {
	return `"` + escape(s) + `"`
}

func xmlText(s string) string { return escape(s) }

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
