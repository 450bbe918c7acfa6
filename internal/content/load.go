package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"micelio/internal/config"
)

var ErrMalformed = errors.New("malformed content")

// LoadError names the file a collection failed to load from.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ReadJSON decodes path into v. Syntax and type errors wrap ErrMalformed.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{File: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &LoadError{File: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

// Collection ties a dataset collection to its file name.
type Collection struct {
	Kind  Kind
	File  string
	Value any
}

// Collections lists the dataset's collections in load order. Values are
// pointers into ds.
func (ds *Dataset) Collections(files config.FilesConfig) []Collection {
	return []Collection{
		{KindCharacter, files.Characters, &ds.Characters},
		{KindLocation, files.Locations, &ds.Locations},
		{KindSong, files.Songs, &ds.Songs},
		{KindPlot, files.Plots, &ds.Plots},
		{KindIntro, files.Intro, &ds.Intro},
		{KindEvent, files.Timeline, &ds.Timeline},
	}
}

// LoadDataset reads all six collections from dir.
func LoadDataset(dir string, files config.FilesConfig) (*Dataset, error) {
	ds := &Dataset{}
	for _, c := range ds.Collections(files) {
		if err := ReadJSON(filepath.Join(dir, c.File), c.Value); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// LoadCharacters reads only the character collection.
func LoadCharacters(dir string, files config.FilesConfig) ([]Character, error) {
	var characters []Character
	if err := ReadJSON(filepath.Join(dir, files.Characters), &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

// LoadTimeline reads only the timeline collection.
func LoadTimeline(dir string, files config.FilesConfig) ([]Event, error) {
	var events []Event
	if err := ReadJSON(filepath.Join(dir, files.Timeline), &events); err != nil {
		return nil, err
	}
	return events, nil
}
