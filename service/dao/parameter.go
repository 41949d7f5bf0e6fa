package dao

import "strconv"

// List parameter names
const (
	ParamSource  = "Source"
	ParamChapter = "Chapter"
	ParamLevel   = "Level"
	ParamHeading = "Heading"
)

type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// NewIntParameter creates parameter with decimal encoded values
func NewIntParameter(name string, values ...int) *Parameter {
	encoded := make([]string, 0, len(values))
	for _, value := range values {
		encoded = append(encoded, strconv.Itoa(value))
	}
	return NewParameter(name, encoded...)
}

// Values returns parameter value as string slice
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}
