// Command orderlycli is a small inspection tool for this module's
// codecs: encode a value and print its wire bytes as hex, decode hex
// bytes back to a value, or compare two hex strings under unsigned
// lexicographic order to confirm order-preservation by hand.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ndimiduk/orderly/cursor"
	"github.com/ndimiduk/orderly/decimal"
	"github.com/ndimiduk/orderly/ieee"
	"github.com/ndimiduk/orderly/order"
	"github.com/ndimiduk/orderly/varint"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orderlycli",
		Short: "Inspect this module's order-preserving codecs from the command line",
	}

	rootCmd.AddCommand(newVarintCmd(), newDecimalCmd(), newFloatCmd(), newCmpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVarintCmd() *cobra.Command {
	varintCmd := &cobra.Command{
		Use:   "varint",
		Short: "Encode or decode a signed (or, with --unsigned, unsigned) varint",
	}

	var ord string
	var reserved int
	var unsigned bool

	encodeCmd := &cobra.Command{
		Use:   "encode <int>",
		Short: "Print the hex-encoded bytes for an integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := order.Parse(ord)
			if err != nil {
				return err
			}

			if unsigned {
				v, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid unsigned integer %q: %w", args[0], err)
				}

				data, err := encodeUnsignedVarint(v, o, reserved)
				if err != nil {
					return err
				}
				fmt.Println(hex.EncodeToString(data))

				return nil
			}

			v, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", args[0], err)
			}

			data, err := encodeSignedVarint(v, o, reserved)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(data))

			return nil
		},
	}
	encodeCmd.Flags().StringVar(&ord, "order", "asc", "Sort direction: asc or desc")
	encodeCmd.Flags().IntVar(&reserved, "reserved", 0, "Number of header bits reserved for an embedding caller")
	encodeCmd.Flags().BoolVar(&unsigned, "unsigned", false, "Encode as an unsigned varint")

	decodeCmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode hex bytes back to an integer or NULL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := order.Parse(ord)
			if err != nil {
				return err
			}

			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex %q: %w", args[0], err)
			}

			if unsigned {
				v, isNull, err := decodeUnsignedVarint(data, o, reserved)
				if err != nil {
					return err
				}
				if isNull {
					fmt.Println("NULL")

					return nil
				}
				fmt.Println(v)

				return nil
			}

			v, isNull, err := decodeSignedVarint(data, o, reserved)
			if err != nil {
				return err
			}
			if isNull {
				fmt.Println("NULL")

				return nil
			}
			fmt.Println(v)

			return nil
		},
	}
	decodeCmd.Flags().StringVar(&ord, "order", "asc", "Sort direction: asc or desc")
	decodeCmd.Flags().IntVar(&reserved, "reserved", 0, "Number of header bits reserved for an embedding caller")
	decodeCmd.Flags().BoolVar(&unsigned, "unsigned", false, "Decode as an unsigned varint")

	varintCmd.AddCommand(encodeCmd, decodeCmd)

	return varintCmd
}

// encodeSignedVarint encodes v with reserved header bits left at zero,
// then applies the order mask uniformly to header and trailing bytes —
// the same flip-after-pack sequence varint.Signed.Serialize uses
// internally at r=0.
func encodeSignedVarint(v int64, o order.Order, reserved int) ([]byte, error) {
	header, trailing, err := varint.EncodeSignedReserved(v, reserved)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(trailing))
	out = append(out, o.FlipByte(header))
	for _, b := range trailing {
		out = append(out, o.FlipByte(b))
	}

	return out, nil
}

func decodeSignedVarint(data []byte, o order.Order, reserved int) (v int64, isNull bool, err error) {
	if len(data) == 0 {
		return 0, false, fmt.Errorf("varint decode: no bytes given")
	}

	header := o.FlipByte(data[0])
	if header == 0x00 {
		return 0, true, nil
	}

	n, err := varint.SignedReservedHeaderLength(header, reserved)
	if err != nil {
		return 0, false, err
	}
	if len(data) < n {
		return 0, false, fmt.Errorf("varint decode: need %d bytes, got %d", n, len(data))
	}

	trailing := make([]byte, n-1)
	for i, b := range data[1:n] {
		trailing[i] = o.FlipByte(b)
	}

	v, err = varint.DecodeSignedReserved(header, trailing, reserved)

	return v, false, err
}

func encodeUnsignedVarint(v uint64, o order.Order, reserved int) ([]byte, error) {
	u := varint.NewUnsigned(o)
	n, err := u.SerializedLength(varint.SomeUint64(v))
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, fmt.Errorf("varint encode: reserved bits not supported for --unsigned on the CLI")
	}

	cur := cursor.New(make([]byte, n))
	if err := u.Serialize(varint.SomeUint64(v), cur); err != nil {
		return nil, err
	}

	return cur.Bytes(), nil
}

func decodeUnsignedVarint(data []byte, o order.Order, reserved int) (v uint64, isNull bool, err error) {
	if reserved != 0 {
		return 0, false, fmt.Errorf("varint decode: reserved bits not supported for --unsigned on the CLI")
	}

	u := varint.NewUnsigned(o)
	cur := cursor.New(data)
	got, err := u.Deserialize(cur)
	if err != nil {
		return 0, false, err
	}
	if !got.Valid {
		return 0, true, nil
	}

	return got.Value, false, nil
}

func newDecimalCmd() *cobra.Command {
	var ord string

	decimalCmd := &cobra.Command{
		Use:   "decimal",
		Short: "Encode an arbitrary-precision decimal",
	}

	encodeCmd := &cobra.Command{
		Use:   "encode <decimal-string>",
		Short: "Print the hex-encoded bytes for a decimal literal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := order.Parse(ord)
			if err != nil {
				return err
			}

			v, err := decimal.ParseString(args[0])
			if err != nil {
				return fmt.Errorf("invalid decimal %q: %w", args[0], err)
			}

			c := decimal.NewCodec(o)
			n, err := c.SerializedLength(v)
			if err != nil {
				return err
			}

			cur := cursor.New(make([]byte, n))
			if err := c.Serialize(v, cur); err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(cur.Bytes()))

			return nil
		},
	}
	encodeCmd.Flags().StringVar(&ord, "order", "asc", "Sort direction: asc or desc")

	decimalCmd.AddCommand(encodeCmd)

	return decimalCmd
}

func newFloatCmd() *cobra.Command {
	var ord string
	var bits int

	floatCmd := &cobra.Command{
		Use:   "float",
		Short: "Encode an IEEE-754 row-key value",
	}

	encodeCmd := &cobra.Command{
		Use:   "encode <float>",
		Short: "Print the hex-encoded IEEE-754 row-key bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := order.Parse(ord)
			if err != nil {
				return err
			}

			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid float %q: %w", args[0], err)
			}

			switch bits {
			case 64:
				c := ieee.NewDouble(o)
				cur := cursor.New(make([]byte, 8))
				if err := c.Serialize(ieee.SomeFloat64(v), cur); err != nil {
					return err
				}
				fmt.Println(hex.EncodeToString(cur.Bytes()))
			case 32:
				c := ieee.NewSingle(o)
				cur := cursor.New(make([]byte, 4))
				if err := c.Serialize(ieee.SomeFloat32(float32(v)), cur); err != nil {
					return err
				}
				fmt.Println(hex.EncodeToString(cur.Bytes()))
			default:
				return fmt.Errorf("--bits must be 32 or 64, got %d", bits)
			}

			return nil
		},
	}
	encodeCmd.Flags().StringVar(&ord, "order", "asc", "Sort direction: asc or desc")
	encodeCmd.Flags().IntVar(&bits, "bits", 64, "Float width: 32 or 64")

	floatCmd.AddCommand(encodeCmd)

	return floatCmd
}

func newCmpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cmp <hexA> <hexB>",
		Short: "Compare two hex byte strings under unsigned lexicographic order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex %q: %w", args[0], err)
			}
			b, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("invalid hex %q: %w", args[1], err)
			}

			switch lexCompare(a, b) {
			case -1:
				fmt.Println("<")
			case 0:
				fmt.Println("=")
			case 1:
				fmt.Println(">")
			}

			return nil
		},
	}
}

// lexCompare compares a and b under unsigned lexicographic byte order,
// treating a shorter string that's a prefix of a longer one as less.
func lexCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
