package obslog_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/clintcan/lecturebench/internal/obslog"
)

func ExampleHashingWriter() {
	var buf bytes.Buffer
	hw := obslog.NewHashingWriter(&buf)
	hw.Write([]byte("hello world"))

	fmt.Printf("Written: %s\n", buf.String())
	fmt.Printf("Hash: %s\n", hw.Sum())
	// Output:
	// Written: hello world
	// Hash: b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9
}

func ExampleHashingReader() {
	r := strings.NewReader("hello world")
	hr := obslog.NewHashingReader(r)

	result, _ := io.ReadAll(hr)

	fmt.Printf("Read: %s\n", string(result))
	fmt.Printf("Hash: %s\n", hr.Sum())
	// Output:
	// Read: hello world
	// Hash: b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9
}

func ExampleVerify() {
	data := "hello world"
	expectedHash := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	ok, err := obslog.Verify(strings.NewReader(data), expectedHash)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Valid: %v\n", ok)
	// Output: Valid: true
}

func ExampleVerify_mismatch() {
	ok, _ := obslog.Verify(strings.NewReader("tampered artifact"), "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9")
	fmt.Printf("Valid: %v\n", ok)
	// Output: Valid: false
}

func ExampleHashBytes() {
	fmt.Printf("Hash: %s\n", obslog.HashBytes([]byte("hello world")))
	// Output: Hash: b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9
}
