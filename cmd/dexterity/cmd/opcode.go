package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/pkg/opcode"
)

var (
	opcodeSwapType      uint8
	opcodeFeeType       uint8
	opcodeLiquidityType uint8
)

var opcodeCmd = &cobra.Command{
	Use:   "opcode",
	Short: "Encode and decode vault opcodes",
}

var opcodeEncodeCmd = &cobra.Command{
	Use:   "encode OPERATION",
	Short: "Encode an operation into a 16-byte opcode",
	Long: `Encode an operation into the hex opcode a vault consumes.

OPERATION is one of SWAP_A_TO_B, SWAP_B_TO_A, ADD_LIQUIDITY,
REMOVE_LIQUIDITY or LOOKUP_RESERVES, in any case.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, ok := opcode.ParseOperation(args[0])
		if !ok {
			return routererrors.InvalidOpcode(fmt.Sprintf("unknown operation %q", args[0]), nil)
		}
		code := opcode.Encode(op, opcode.Params{
			SwapType:      opcodeSwapType,
			FeeType:       opcodeFeeType,
			LiquidityType: opcodeLiquidityType,
		})
		fmt.Fprintln(cmd.OutOrStdout(), code.Hex())
		return nil
	},
}

var opcodeDecodeCmd = &cobra.Command{
	Use:   "decode HEX",
	Short: "Decode a hex opcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := opcode.FromHex(args[0])
		if err != nil {
			return err
		}
		p := code.Params()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Operation:      %s (0x%02x)\n", code.Operation(), byte(code.Operation()))
		fmt.Fprintf(out, "Swap type:      %d\n", p.SwapType)
		fmt.Fprintf(out, "Fee type:       %d\n", p.FeeType)
		fmt.Fprintf(out, "Liquidity type: %d\n", p.LiquidityType)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opcodeCmd)
	opcodeCmd.AddCommand(opcodeEncodeCmd)
	opcodeCmd.AddCommand(opcodeDecodeCmd)

	opcodeEncodeCmd.Flags().Uint8Var(&opcodeSwapType, "swap-type", 0, "swap type byte")
	opcodeEncodeCmd.Flags().Uint8Var(&opcodeFeeType, "fee-type", 0, "fee type byte")
	opcodeEncodeCmd.Flags().Uint8Var(&opcodeLiquidityType, "liquidity-type", 0, "liquidity type byte")
}
