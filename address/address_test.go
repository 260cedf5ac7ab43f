// Copyright 2024 by the Authors
// This file is part of the cw-sdk library.
//
// The cw-sdk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cw-sdk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cw-sdk library. If not, see <http://www.gnu.org/licenses/>.

package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i)
	}

	encoded, err := Encode(raw)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
}

func TestDecodeRejectsWrongPrefix(t *testing.T) {
	old := Prefix
	Prefix = "other"
	encoded, err := Encode(make([]byte, 20))
	Prefix = old
	require.NoError(t, err)

	_, err = Decode(encoded)
	if err == nil {
		t.Fatal("expected decode to reject a mismatched human-readable prefix")
	}
}

func TestDeriveFromLabelIsDeterministic(t *testing.T) {
	a1, err := DeriveFromLabel("bank")
	require.NoError(t, err)
	a2, err := DeriveFromLabel("bank")
	require.NoError(t, err)
	require.Equal(t, a1, a2)

	other, err := DeriveFromLabel("not-bank")
	require.NoError(t, err)
	if other == a1 {
		t.Fatal("distinct labels must derive distinct addresses")
	}
}

func TestValidateLabelRejectsIllegalPrefix(t *testing.T) {
	if ValidateLabel(IllegalLabelPrefix() + "anything") {
		t.Error("label starting with the reserved prefix must be rejected")
	}
	if !ValidateLabel("bank") {
		t.Error("an ordinary label must be accepted")
	}
}
