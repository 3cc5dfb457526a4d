package grw

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ReportFilename is written to each directory containing ROM images.
const ReportFilename = "grw-report.json"

const scanWorkers = 10

// reportEntry is one identified ROM in a directory report.
type reportEntry struct {
	File        string `json:"file"`
	CRC         string `json:"crc"`
	FilenameCRC string `json:"filename_crc"`
	Name        string `json:"name"`
	KnownAs     string `json:"known_as,omitempty"`
	Region      string `json:"region"`
	HeaderValid bool   `json:"header_valid"`
}

func containsCue(dir string) (bool, error) {
	d, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return false, err
	}

	if !info.IsDir() {
		return false, errors.New("not a directory")
	}

	files, err := d.Readdirnames(0)
	if err != nil {
		return false, err
	}

	for _, file := range files {
		if filepath.Ext(file) == ".cue" {
			return true, nil
		}
	}

	return false, nil
}

func (w *Workshop) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (w *Workshop) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			var entries []reportEntry
			if err := filepath.Walk(dir, func(file string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
				if info.Name()[0] == '.' {
					if info.Mode().IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				if !info.Mode().IsRegular() {
					return nil
				}

				if info.Size() > MaxROMSize {
					return nil
				}

				switch filepath.Ext(file) {
				case ".bin":
					// A .bin next to a .cue is a CD track, not a cartridge image
					hasCue, err := containsCue(filepath.Dir(file))
					if err != nil {
						return err
					}
					if hasCue {
						return nil
					}
					fallthrough
				case ".gen", ".md", ".smd", ".sg":
					// Only report files in the top directory; subdirectories get their own report
					if filepath.Dir(file) != dir {
						return nil
					}

					entry, err := w.reportROM(file)
					if err != nil {
						w.logger.Printf("Skipping %q: %v\n", file, err)
						return nil
					}
					entries = append(entries, *entry)
				case ".cue":
					if filepath.Dir(filepath.Dir(file)) != dir {
						return nil
					}

					crc, err := crcCueFile(file)
					if err != nil {
						w.logger.Printf("Skipping %q: %v\n", file, err)
						return nil
					}

					entry := reportEntry{
						File:        file,
						CRC:         crc,
						FilenameCRC: crcFilename(filepath.Base(filepath.Dir(file))),
					}
					if w.db != nil {
						if entry.KnownAs, _, err = w.db.FindGameByCRC(crc); err != nil {
							return err
						}
					}
					entries = append(entries, entry)
				}

				return nil
			}); err != nil {
				errc <- err
				return
			}

			if len(entries) > 0 {
				b, err := json.MarshalIndent(struct {
					Directory string        `json:"directory"`
					Entries   []reportEntry `json:"entries"`
				}{dir, entries}, "", "  ")
				if err != nil {
					errc <- err
					return
				}

				if err := ioutil.WriteFile(filepath.Join(dir, ReportFilename), b, 0644); err != nil {
					errc <- err
					return
				}
			}
		}
	}()
	return errc, nil
}

// reportROM analyzes one cartridge image for a directory report.
func (w *Workshop) reportROM(file string) (*reportEntry, error) {
	info, err := w.Analyze(file)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(file)
	return &reportEntry{
		File:        file,
		CRC:         info.Checksum,
		FilenameCRC: crcFilename(strings.TrimSuffix(base, filepath.Ext(base))),
		Name:        info.Name,
		KnownAs:     info.KnownAs,
		Region:      info.Region,
		HeaderValid: info.HeaderValid,
	}, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks a directory tree, identifies every ROM image it finds and
// writes a report file per directory.
func (w *Workshop) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := w.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := w.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
