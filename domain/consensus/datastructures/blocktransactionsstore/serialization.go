package blocktransactionsstore

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ghostdagnet/ghostnoded/domain/consensus/model/externalapi"
)

// serializeTransactions encodes the block's transaction list. UTXOEntry
// annotations on inputs are a runtime-only artifact of UTXO verification (see
// §6, the UTXO diff manager boundary) and are never persisted here; they are
// re-attached when a transaction is read back out during virtual processing.
func serializeTransactions(transactions []*externalapi.DomainTransaction) ([]byte, error) {
	var scratch [8]byte
	buf := make([]byte, 0, 256*len(transactions))

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(transactions)))
	buf = append(buf, scratch[:]...)

	for _, tx := range transactions {
		binary.LittleEndian.PutUint32(scratch[:4], uint32(tx.Version))
		buf = append(buf, scratch[:4]...)

		binary.LittleEndian.PutUint64(scratch[:], uint64(len(tx.Inputs)))
		buf = append(buf, scratch[:]...)
		for _, input := range tx.Inputs {
			buf = append(buf, input.PreviousOutpoint.TransactionID[:]...)
			binary.LittleEndian.PutUint32(scratch[:4], input.PreviousOutpoint.Index)
			buf = append(buf, scratch[:4]...)

			binary.LittleEndian.PutUint64(scratch[:], uint64(len(input.SignatureScript)))
			buf = append(buf, scratch[:]...)
			buf = append(buf, input.SignatureScript...)

			binary.LittleEndian.PutUint64(scratch[:], input.Sequence)
			buf = append(buf, scratch[:]...)
		}

		binary.LittleEndian.PutUint64(scratch[:], uint64(len(tx.Outputs)))
		buf = append(buf, scratch[:]...)
		for _, output := range tx.Outputs {
			binary.LittleEndian.PutUint64(scratch[:], output.Value)
			buf = append(buf, scratch[:]...)

			binary.LittleEndian.PutUint16(scratch[:2], output.ScriptPublicKey.Version)
			buf = append(buf, scratch[:2]...)

			binary.LittleEndian.PutUint64(scratch[:], uint64(len(output.ScriptPublicKey.Script)))
			buf = append(buf, scratch[:]...)
			buf = append(buf, output.ScriptPublicKey.Script...)
		}

		binary.LittleEndian.PutUint64(scratch[:], tx.LockTime)
		buf = append(buf, scratch[:]...)

		buf = append(buf, tx.SubnetworkID[:]...)

		binary.LittleEndian.PutUint64(scratch[:], tx.Gas)
		buf = append(buf, scratch[:]...)

		binary.LittleEndian.PutUint64(scratch[:], uint64(len(tx.Payload)))
		buf = append(buf, scratch[:]...)
		buf = append(buf, tx.Payload...)
	}

	return buf, nil
}

func deserializeTransactions(raw []byte) ([]*externalapi.DomainTransaction, error) {
	r := &byteReader{data: raw}

	txCount, err := r.uint64()
	if err != nil {
		return nil, err
	}
	transactions := make([]*externalapi.DomainTransaction, txCount)

	for i := range transactions {
		version, err := r.uint32()
		if err != nil {
			return nil, err
		}

		inputCount, err := r.uint64()
		if err != nil {
			return nil, err
		}
		inputs := make([]*externalapi.DomainTransactionInput, inputCount)
		for j := range inputs {
			txIDBytes, err := r.bytes(externalapi.DomainHashSize)
			if err != nil {
				return nil, err
			}
			index, err := r.uint32()
			if err != nil {
				return nil, err
			}
			scriptLen, err := r.uint64()
			if err != nil {
				return nil, err
			}
			signatureScript, err := r.bytes(int(scriptLen))
			if err != nil {
				return nil, err
			}
			sequence, err := r.uint64()
			if err != nil {
				return nil, err
			}

			input := &externalapi.DomainTransactionInput{
				PreviousOutpoint: externalapi.DomainOutpoint{
					Index: index,
				},
				SignatureScript: append([]byte(nil), signatureScript...),
				Sequence:        sequence,
			}
			copy(input.PreviousOutpoint.TransactionID[:], txIDBytes)
			inputs[j] = input
		}

		outputCount, err := r.uint64()
		if err != nil {
			return nil, err
		}
		outputs := make([]*externalapi.DomainTransactionOutput, outputCount)
		for j := range outputs {
			value, err := r.uint64()
			if err != nil {
				return nil, err
			}
			scriptVersion, err := r.uint16()
			if err != nil {
				return nil, err
			}
			scriptLen, err := r.uint64()
			if err != nil {
				return nil, err
			}
			script, err := r.bytes(int(scriptLen))
			if err != nil {
				return nil, err
			}
			outputs[j] = &externalapi.DomainTransactionOutput{
				Value: value,
				ScriptPublicKey: &externalapi.ScriptPublicKey{
					Script:  append([]byte(nil), script...),
					Version: scriptVersion,
				},
			}
		}

		lockTime, err := r.uint64()
		if err != nil {
			return nil, err
		}

		subnetworkIDBytes, err := r.bytes(externalapi.DomainSubnetworkIDSize)
		if err != nil {
			return nil, err
		}

		gas, err := r.uint64()
		if err != nil {
			return nil, err
		}

		payloadLen, err := r.uint64()
		if err != nil {
			return nil, err
		}
		payload, err := r.bytes(int(payloadLen))
		if err != nil {
			return nil, err
		}

		tx := &externalapi.DomainTransaction{
			Version:  int32(version),
			Inputs:   inputs,
			Outputs:  outputs,
			LockTime: lockTime,
			Gas:      gas,
			Payload:  append([]byte(nil), payload...),
		}
		copy(tx.SubnetworkID[:], subnetworkIDBytes)
		transactions[i] = tx
	}

	return transactions, nil
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, errors.New("unexpected end of transaction list encoding")
	}
	out := r.data[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

func (r *byteReader) uint64() (uint64, error) {
	raw, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (r *byteReader) uint32() (uint32, error) {
	raw, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (r *byteReader) uint16() (uint16, error) {
	raw, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}
