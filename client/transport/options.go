package transport

import (
	"fmt"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"io/ioutil"
)

// LoadOptions reads request options from a YAML file
func LoadOptions(filename string) (Options, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return Options{}, errors.Wrapf(err, "unable to open options file %s", filename)
	}

	opts, err := ParseOptions(b)
	if err != nil {
		return Options{}, errors.Wrapf(err, "options file %s", filename)
	}

	return opts, nil
}

func ParseOptions(b []byte) (Options, error) {
	var opts Options
	if err := yaml.UnmarshalStrict(b, &opts); err != nil {
		return Options{}, errors.Wrap(err, "unable to parse options")
	}

	opts.Payload = normalize(opts.Payload)

	return opts, nil
}

// normalize turns the map[interface{}]interface{} produced by yaml into
// values encoding/json accepts
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			m[k] = normalize(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(v))
		for i, e := range v {
			s[i] = normalize(e)
		}
		return s
	}

	return v
}
