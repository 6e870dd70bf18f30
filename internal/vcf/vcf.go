// Package vcf parses vCard files into name/phone pairs for contact
// import. It handles 2.1/3.0/4.0 cards loosely: FN or N for the name,
// the first TEL for the phone, folded continuation lines, and parameters
// on property names (TEL;TYPE=CELL:...).
package vcf

import (
	"bufio"
	"io"
	"strings"
)

// Card is one imported vCard reduced to what the contact list needs.
type Card struct {
	Name  string
	Phone string
}

// Parse reads every vCard in r. Cards without a TEL property are skipped.
func Parse(r io.Reader) ([]Card, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cards []Card
	var cur *Card
	var lastProp string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		// Folded lines continue the previous property.
		if cur != nil && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			cont := line[1:]
			switch lastProp {
			case "FN":
				cur.Name += cont
			case "TEL":
				cur.Phone += normalizePhone(cont)
			}
			continue
		}

		name, value, ok := splitProperty(line)
		if !ok {
			continue
		}
		lastProp = name

		switch name {
		case "BEGIN":
			if strings.EqualFold(value, "VCARD") {
				cur = &Card{}
			}
		case "END":
			if strings.EqualFold(value, "VCARD") && cur != nil {
				if cur.Phone != "" {
					cards = append(cards, *cur)
				}
				cur = nil
			}
		case "FN":
			if cur != nil && cur.Name == "" {
				cur.Name = value
			}
		case "N":
			// Structured name; used only when no FN was seen.
			if cur != nil && cur.Name == "" {
				cur.Name = structuredName(value)
			}
		case "TEL":
			if cur != nil && cur.Phone == "" {
				cur.Phone = normalizePhone(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// splitProperty splits "TEL;TYPE=CELL:+852 9123 4567" into ("TEL", value).
func splitProperty(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	name = line[:idx]
	value = line[idx+1:]
	if sep := strings.IndexAny(name, ";"); sep >= 0 {
		name = name[:sep]
	}
	return strings.ToUpper(strings.TrimSpace(name)), strings.TrimSpace(value), true
}

// structuredName turns "Doe;John;;;" into "John Doe".
func structuredName(v string) string {
	parts := strings.Split(v, ";")
	var fields []string
	if len(parts) > 1 && parts[1] != "" {
		fields = append(fields, parts[1])
	}
	if parts[0] != "" {
		fields = append(fields, parts[0])
	}
	return strings.Join(fields, " ")
}

// normalizePhone strips formatting noise, keeping digits and a leading +.
func normalizePhone(v string) string {
	var b strings.Builder
	for i, r := range v {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
