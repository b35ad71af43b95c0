package s8

// 喷印参数文本窗口：应答下标 [4, 30)，26 个 ASCII 字符
// 布局（窗口内偏移）：
//
//	0:4   电机转速
//	5:9   墨水压力（逗号小数）
//	10:12 粘度计充填次数
//	13:15 溶剂添加量
//	16:20 平均墨线速度（逗号小数）
//	21:23 电路温度
//	24:26 墨路温度
const (
	paramsWindowStart = 4
	paramsWindowEnd   = 30
)

// ParameterSet 喷印参数集合
type ParameterSet struct {
	MotorSpeed               int     `json:"motor_speed"`
	Pressure                 float64 `json:"pressure"`
	ViscoFillingTimes        int     `json:"visco_filling_times"`
	AdditiveAdded            int     `json:"additive_added"`
	AverageJetSpeed          float64 `json:"average_jet_speed"`
	TemperatureOfElectronics int     `json:"temperature_of_electronics"`
	TemperatureOfInkCircuit  int     `json:"temperature_of_ink_circuit"`
}

// DecodeParameters 解码读取喷印参数应答
func DecodeParameters(response []byte) (ParameterSet, error) {
	w, err := PayloadWindow(response, paramsWindowStart, paramsWindowEnd)
	if err != nil {
		return ParameterSet{}, err
	}

	var ps ParameterSet
	if ps.MotorSpeed, err = ParseASCIIInt(w[0:4]); err != nil {
		return ParameterSet{}, err
	}
	if ps.Pressure, err = ParseCommaDecimal(w[5:9]); err != nil {
		return ParameterSet{}, err
	}
	if ps.ViscoFillingTimes, err = ParseASCIIInt(w[10:12]); err != nil {
		return ParameterSet{}, err
	}
	if ps.AdditiveAdded, err = ParseASCIIInt(w[13:15]); err != nil {
		return ParameterSet{}, err
	}
	if ps.AverageJetSpeed, err = ParseCommaDecimal(w[16:20]); err != nil {
		return ParameterSet{}, err
	}
	if ps.TemperatureOfElectronics, err = ParseASCIIInt(w[21:23]); err != nil {
		return ParameterSet{}, err
	}
	if ps.TemperatureOfInkCircuit, err = ParseASCIIInt(w[24:26]); err != nil {
		return ParameterSet{}, err
	}
	return ps, nil
}

// 喷印计数文本窗口：应答下标 [4, 13)，9 个 ASCII 数字
const (
	counterWindowStart = 4
	counterWindowEnd   = 13
)

// DecodeCounter 解码读取喷印计数应答
func DecodeCounter(response []byte) (int, error) {
	w, err := PayloadWindow(response, counterWindowStart, counterWindowEnd)
	if err != nil {
		return 0, err
	}
	return ParseASCIIInt(w)
}
