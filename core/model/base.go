package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitting は学習処理の途中の状態（失敗時は NotFitted に戻る）
	Fitting
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String returns the lower-case name of the state.
func (s EstimatorState) String() string {
	switch s {
	case NotFitted:
		return "not_fitted"
	case Fitting:
		return "fitting"
	case Fitted:
		return "fitted"
	default:
		return "unknown"
	}
}

// BaseEstimator は単一ゴルーチンで使われる推定器の基底となる構造体
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// State は現在の学習状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// BeginFit は学習開始を記録する。以前の学習結果は無効になる
func (e *BaseEstimator) BeginFit() {
	e.state = Fitting
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
