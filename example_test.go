package ezfs_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/ezfs"
	"github.com/hupe1980/ezfs/compress"
)

func Example() {
	ctx := context.Background()

	fs := ezfs.New(ezfs.NewMemoryBackend(),
		ezfs.WithRegistry(compress.Builtin()),
		ezfs.WithCompression("gzip"),
	)

	err := fs.WithFile(ctx, "hello.txt", "w", func(f *ezfs.File) error {
		_, err := f.WriteString("Hello, ezfs!")
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	err = fs.WithFile(ctx, "hello.txt", "r", func(f *ezfs.File) error {
		text, err := f.ReadText()
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// Output: Hello, ezfs!
}

func ExampleChain() {
	ctx := context.Background()

	// Verify integrity first, then compress the sealed content.
	chain := ezfs.Chain(ezfs.NewChecksumTransform(), compress.Zstd())

	fs := ezfs.New(ezfs.NewMemoryBackend(), ezfs.WithTransform(chain))

	err := fs.WithFile(ctx, "data.bin", "wb", func(f *ezfs.File) error {
		_, err := f.Write([]byte("important bytes"))
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	err = fs.WithFile(ctx, "data.bin", "rb", func(f *ezfs.File) error {
		data, err := f.Read()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// Output: important bytes
}

func ExampleNewTransform() {
	ctx := context.Background()

	// A toy obfuscation transform; XOR is its own inverse.
	xor := func(data []byte) ([]byte, error) {
		out := make([]byte, len(data))
		for i, b := range data {
			out[i] = b ^ 0x42
		}
		return out, nil
	}
	obfuscate := ezfs.NewTransform("xor", xor, xor)

	fs := ezfs.New(ezfs.NewMemoryBackend(), ezfs.WithTransform(obfuscate))

	err := fs.WithFile(ctx, "secret", "w", func(f *ezfs.File) error {
		_, err := f.WriteString("not plaintext on the wire")
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	err = fs.WithFile(ctx, "secret", "r", func(f *ezfs.File) error {
		text, err := f.ReadText()
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	// Output: not plaintext on the wire
}
