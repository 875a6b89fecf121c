package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reads and writes the simple whitespace-separated catalog format that
// detection tools dump out:
//
//   # x       y        flux     id
//   165.52    208.31   1337.3   1
//   396.11    382.09    880.0   2
//
// The flux and id columns are optional; missing flux reads as 0, and a
// missing id gets the 1-based row count.

func LoadFile(filename string) (Catalog, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog open+r '%s': %v", filename, err)
	}
	defer f.Close()

	c, err := Read(f)
	c.LoadFilename = filename
	if err != nil {
		return c, fmt.Errorf("catalog parse '%s': %v", filename, err)
	}
	return c, nil
}

func Read(r io.Reader) (Catalog, error) {
	c := Catalog{Sources: []Source{}}
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return c, fmt.Errorf("line %d: need at least x and y columns", line)
		}

		s := Source{ID: len(c.Sources) + 1}

		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return c, fmt.Errorf("line %d: x '%s': %v", line, fields[0], err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return c, fmt.Errorf("line %d: y '%s': %v", line, fields[1], err)
		}
		s.X, s.Y = x, y

		if len(fields) >= 3 {
			if s.Flux, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return c, fmt.Errorf("line %d: flux '%s': %v", line, fields[2], err)
			}
		}
		if len(fields) >= 4 {
			if s.ID, err = strconv.Atoi(fields[3]); err != nil {
				return c, fmt.Errorf("line %d: id '%s': %v", line, fields[3], err)
			}
		}

		if err := s.Validate(); err != nil {
			if ise, ok := err.(*InvalidSourceError); ok {
				ise.Line = line
			}
			return c, err
		}

		c.Sources = append(c.Sources, s)
	}

	return c, scanner.Err()
}

func (c Catalog)WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("catalog open+w '%s': %v", filename, err)
	}
	defer f.Close()
	return c.Write(f)
}

func (c Catalog)Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# x         y           flux        id\n"); err != nil {
		return err
	}
	for _, s := range c.Sources {
		if _, err := fmt.Fprintf(w, "%-11.3f %-11.3f %-11.3f %d\n", s.X, s.Y, s.Flux, s.ID); err != nil {
			return err
		}
	}
	return nil
}
