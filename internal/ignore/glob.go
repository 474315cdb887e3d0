package ignore

import (
	"regexp"
	"strings"
)

const (
	pathSeparator          = '/'
	anySegmentsExpression  = "(?:.*/)?"
	anythingExpression     = ".*"
	segmentRunExpression   = "[^/]*"
	segmentCharExpression  = "[^/]"
	negatedClassOpening    = "[^/"
	classOpening           = "["
	classClosing           = "]"
	escapedOpeningBracket  = `\[`
	posixClassOpening      = "[:"
	posixClassClosing      = ":]"
	expressionAnchorStart  = "^"
	expressionAnchorFinish = "$"
)

// compileGlob builds the matching expression for a pattern body. Bracket
// expressions that RE2 rejects (reversed ranges and the like) are retried with
// brackets treated as literal characters, so compilation never fails for
// non-empty input.
func compileGlob(body string) *regexp.Regexp {
	expression, compileError := regexp.Compile(expressionAnchorStart + translateGlob(body, true) + expressionAnchorFinish)
	if compileError == nil {
		return expression
	}
	return regexp.MustCompile(expressionAnchorStart + translateGlob(body, false) + expressionAnchorFinish)
}

// translateGlob converts glob syntax into an RE2 fragment. A star matches
// any run within one segment and a double star forming a whole segment matches
// zero or more segments. A question mark matches one character other than the
// separator, brackets form a class negated by a leading ! or ^, and a
// backslash makes the next character literal.
func translateGlob(glob string, allowClasses bool) string {
	var builder strings.Builder
	for index := 0; index < len(glob); {
		character := glob[index]
		switch {
		case character == '*':
			runEnd := index
			for runEnd < len(glob) && glob[runEnd] == '*' {
				runEnd++
			}
			startsSegment := index == 0 || glob[index-1] == pathSeparator
			endsSegment := runEnd == len(glob) || glob[runEnd] == pathSeparator
			switch {
			case runEnd-index < 2 || !startsSegment || !endsSegment:
				builder.WriteString(segmentRunExpression)
				index = runEnd
			case runEnd < len(glob):
				builder.WriteString(anySegmentsExpression)
				index = runEnd + 1
			default:
				builder.WriteString(anythingExpression)
				index = runEnd
			}
		case character == '?':
			builder.WriteString(segmentCharExpression)
			index++
		case character == '\\':
			if index+1 < len(glob) {
				builder.WriteString(regexp.QuoteMeta(glob[index+1 : index+2]))
				index += 2
				continue
			}
			builder.WriteString(regexp.QuoteMeta(`\`))
			index++
		case character == '[' && allowClasses:
			class, consumed, ok := translateClass(glob[index:])
			if !ok {
				builder.WriteString(escapedOpeningBracket)
				index++
				continue
			}
			builder.WriteString(class)
			index += consumed
		default:
			builder.WriteString(regexp.QuoteMeta(glob[index : index+1]))
			index++
		}
	}
	return builder.String()
}

// translateClass converts the bracket expression at the start of glob. It
// reports the number of bytes consumed and false when the class is never
// closed.
func translateClass(glob string) (string, int, bool) {
	position := 1
	negated := false
	if position < len(glob) && (glob[position] == '!' || glob[position] == '^') {
		negated = true
		position++
	}

	var body strings.Builder
	first := true
	for position < len(glob) {
		character := glob[position]
		switch {
		case character == ']' && !first:
			opening := classOpening
			if negated {
				opening = negatedClassOpening
			}
			return opening + body.String() + classClosing, position + 1, true
		case character == '\\' && position+1 < len(glob):
			body.WriteString(escapeClassCharacter(glob[position+1]))
			position += 2
		case strings.HasPrefix(glob[position:], posixClassOpening):
			closing := strings.Index(glob[position+len(posixClassOpening):], posixClassClosing)
			if closing < 0 {
				body.WriteString(escapeClassCharacter(character))
				position++
				break
			}
			end := position + len(posixClassOpening) + closing + len(posixClassClosing)
			body.WriteString(glob[position:end])
			position = end
		case character == '-':
			body.WriteByte(character)
			position++
		default:
			body.WriteString(escapeClassCharacter(character))
			position++
		}
		first = false
	}
	return "", 0, false
}

func escapeClassCharacter(character byte) string {
	isAlphanumeric := (character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z') ||
		(character >= '0' && character <= '9')
	if isAlphanumeric || character >= 0x80 {
		return string([]byte{character})
	}
	return `\` + string([]byte{character})
}
