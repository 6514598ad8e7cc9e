package grade

import(
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Params round-trip through YAML so edits sit next to the raw file as
// a small human-diffable record.

func (p Params)AsYaml() (string, error) {
	b, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("params yaml marshal: %v", err)
	}
	return string(b), nil
}

func (p Params)Save(filename string) error {
	str, err := p.AsYaml()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(filename, []byte(str), 0644); err != nil {
		return fmt.Errorf("params write %s: %v", filename, err)
	}
	return nil
}

func LoadParams(filename string) (Params, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Params{}, fmt.Errorf("params read %s: %v", filename, err)
	}
	return newParamsFromYaml(contents)
}

func newParamsFromYaml(b []byte) (Params, error) {
	p := Neutral()
	err := yaml.Unmarshal(b, &p)
	if err != nil {
		return p, fmt.Errorf("params yaml: %v", err)
	}
	return p, nil
}
