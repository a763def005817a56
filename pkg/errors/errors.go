// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// バイアス除去の各段階（fit / transform）で発生するエラーを構造化された型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("debias-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// DegenerateDirectionWarning などの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DegenerateDirectionWarning はバイアス方向（または部分空間の基底）のノルムがほぼ0の場合の警告です。
// 該当する成分による中和・均等化はスキップされ、NaN/Infは生成されません。
type DegenerateDirectionWarning struct {
	Criterion string
	Component int
	Norm      float64
	Stage     string // "fit", "neutralize", "equalize"
}

func (w *DegenerateDirectionWarning) Error() string {
	return fmt.Sprintf("%s: bias component %d of criterion '%s' is degenerate (norm=%.3g); affected projections are skipped",
		w.Stage, w.Component, w.Criterion, w.Norm)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateDirectionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("criterion", w.Criterion).
		Int("component", w.Component).
		Float64("norm", w.Norm).
		Str("stage", w.Stage).
		Str("type", "DegenerateDirectionWarning")
}

// NewDegenerateDirectionWarning は新しいDegenerateDirectionWarningを作成します。
func NewDegenerateDirectionWarning(stage, criterion string, component int, norm float64) *DegenerateDirectionWarning {
	return &DegenerateDirectionWarning{Stage: stage, Criterion: criterion, Component: component, Norm: norm}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// Word set sources reported by MissingWordError.
const (
	SourceDefinitional = "definitional"
	SourceEqualize     = "equalize"
	SourceTarget       = "target"
	SourceIgnore       = "ignore"
)

// MissingWordError は単語がベクトル空間の語彙に存在しない場合のエラーです。
// SetIndex は definitional / equalize セット内のインデックスで、target / ignore の場合は -1 です。
type MissingWordError struct {
	Word     string
	Source   string
	SetIndex int
}

func (e *MissingWordError) Error() string {
	if e.SetIndex >= 0 {
		return fmt.Sprintf("debias: word '%s' from %s set %d is not in the vocabulary", e.Word, e.Source, e.SetIndex)
	}
	return fmt.Sprintf("debias: word '%s' from %s words is not in the vocabulary", e.Word, e.Source)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MissingWordError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("word", e.Word).
		Str("source", e.Source).
		Int("set_index", e.SetIndex).
		Str("type", "MissingWordError")
}

// NewMissingWordError は新しいMissingWordErrorを作成し、スタックトレースを付与します。
func NewMissingWordError(word, source string, setIndex int) error {
	return errors.WithStack(&MissingWordError{Word: word, Source: source, SetIndex: setIndex})
}

// NotFittedError はモデルが未学習の状態で `Transform` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("debias: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// InsufficientMemoryError はベクトル空間の複製に必要なメモリを確保できない場合のエラーです。
// 呼び出し側は TransformInPlace に切り替えることで回避できます。
type InsufficientMemoryError struct {
	Operation      string
	RequiredBytes  int64
	AvailableBytes int64
	Cause          error
}

func (e *InsufficientMemoryError) Error() string {
	msg := fmt.Sprintf("debias: %s: cannot copy vector space (required %d bytes, available %d bytes); use TransformInPlace to avoid the copy",
		e.Operation, e.RequiredBytes, e.AvailableBytes)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InsufficientMemoryError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientMemoryError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int64("required_bytes", e.RequiredBytes).
		Int64("available_bytes", e.AvailableBytes).
		Str("type", "InsufficientMemoryError")
}

// NewInsufficientMemoryError は新しいInsufficientMemoryErrorを作成し、スタックトレースを付与します。
// available が負の場合は上限不明を意味します。
func NewInsufficientMemoryError(op string, required, available int64, cause error) error {
	return errors.WithStack(&InsufficientMemoryError{
		Operation:      op,
		RequiredBytes:  required,
		AvailableBytes: available,
		Cause:          cause,
	})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0: 行（単語数）, 1: 列（埋め込み次元）
}

func (e *DimensionError) Error() string {
	axisName := "dimensions"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("debias: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("debias: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("debias: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError はモデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("debias: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("debias: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf を検出します。
type NumericalInstabilityError struct {
	Operation string
	Word      string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	if e.Word != "" {
		return fmt.Sprintf("debias: numerical instability detected in %s for word '%s'. Values: [%s]", e.Operation, e.Word, valStr)
	}
	return fmt.Sprintf("debias: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation, word string, values []float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Word: word, Values: values})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// CombineErrors は二つのエラーを一つにまとめます。どちらかが nil ならもう一方を返します。
// secondary は err の詳細として保持され、Is/As の対象にはなりません。
func CombineErrors(err, secondary error) error {
	return errors.CombineErrors(err, secondary)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrDuplicateWord は同じ単語が二度登録された場合のエラーです。
	ErrDuplicateWord = New("duplicate word")
)
