package utils

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
)

func DownloadFile(dest string, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s while downloading %s", resp.Status, url)
	}

	// write to a tmp file first to avoid leaving a corrupt file on failure
	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		// clean up the partial tmp file
		os.Remove(tmpPath)
		return err
	}

	// close before rename so the file is fully flushed
	out.Close()

	// atomically move the tmp file to the final destination
	return os.Rename(tmpPath, dest)
}

// ExtractGzip decompresses a gzip file at src into dest, going through a tmp
// file so a truncated decompression never shadows as a finished one.
func ExtractGzip(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gz.Close()

	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, gz)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	out.Close()

	return os.Rename(tmpPath, dest)
}
