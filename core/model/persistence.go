package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// SaveModel はモデル（学習済みの変換など）をgob形式でファイルに保存する
//
// 使用例:
//
//	ft, _ := hd.FittedTransform()
//	err := model.SaveModel(ft, "gender.gob")
func SaveModel(m interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	if err := SaveModelToWriter(m, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "close %s", filename)
}

// LoadModel はファイルからモデルを読み込む
//
//	var ft debias.FittedTransform
//	err := model.LoadModel(&ft, "gender.gob")
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()
	return LoadModelFromReader(m, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
