package parser

// Option represents parser option
type Option func(p *Parser)

// WithChapterPattern sets the regular expression recognising chapter headings.
// The first capture group, when numeric, is used as chapter number.
func WithChapterPattern(pattern string) Option {
	return func(p *Parser) {
		if pattern != "" {
			p.chapterPattern = pattern
		}
	}
}

// WithMaxHeadingLength sets the maximum section heading length in runes
func WithMaxHeadingLength(length int) Option {
	return func(p *Parser) {
		p.maxHeadingLength = length
	}
}
